// Package pipeline runs the shipment document flow: collect PDFs, pick a
// parser from the "[Name]" tag of the mail subject or file name, extract
// records, write one workbook per PDF and upload the workbooks.
//
//	p, err := pipeline.New(cfg)
//	summary, err := p.Run(ctx, pipeline.MailSource{Config: cfg}, uploader)
//
// A document that cannot be parsed is logged and reported in the summary;
// it does not stop the others.
package pipeline
