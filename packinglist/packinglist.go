package packinglist

import (
	"context"
	"log/slog"
	"strings"

	"github.com/randalmurphal/shipdoc/extract"
	"github.com/randalmurphal/shipdoc/logging"
	"github.com/randalmurphal/shipdoc/parser"
	"github.com/randalmurphal/shipdoc/record"
	"github.com/randalmurphal/shipdoc/table"
)

// Name is the registry name of the packing list parser.
const Name = "PackageList"

// Internal field names.
const (
	FieldDate       = "Date"
	FieldCustCode   = "Cust._Code"
	FieldDFCode     = "DF_Code"
	FieldPONo       = "PO_No"
	FieldDeviceCode = "Device_Code"
	FieldDevice     = "Device"
	FieldOSATDevice = "OSAT_Device"
	FieldOSATLotNo  = "OSAT.Lot_no"
	FieldLotNo      = "Lot_No"
	FieldWaferID    = "Wafer_ID"
	FieldLotType    = "Lot_Type"
	FieldMode       = "Manufacturing_Mode"
	FieldBIN        = "BIN"
	FieldGoodQty    = "Good_Qty"
	FieldRejectQty  = "Reject_Qty"
	FieldDatecode   = "Datecode"
)

var fields = record.FieldMap{
	{Name: FieldDate, External: "入库日期"},
	{Name: FieldCustCode, External: "Cust. Code"},
	{Name: FieldDFCode, External: "DF Code"},
	{Name: FieldPONo, External: "PO No"},
	{Name: FieldDeviceCode, External: "Device Code"},
	{Name: FieldDevice, External: "Device"},
	{Name: FieldOSATDevice, External: "OSAT Device"},
	{Name: FieldOSATLotNo, External: "OSAT.Lot no"},
	{Name: FieldLotNo, External: "Lot No"},
	{Name: FieldWaferID, External: "Wafer ID"},
	{Name: FieldLotType, External: "Lot Type"},
	{Name: FieldMode, External: "加工模式"},
	{Name: FieldBIN, External: "BIN"},
	{Name: FieldGoodQty, External: "Good Qty"},
	{Name: FieldRejectQty, External: "Reject Qty"},
	{Name: FieldDatecode, External: "Datecode"},
}

// Item table columns.
const (
	colDevice = 1 // "<osat device>/<device>"
	colLot    = 2 // "<lot>/<wafer qty>"
)

var (
	itemTable = table.MustPattern(`^(\S+\s*)?Item`)

	scalars = map[string]extract.Scalar{
		FieldDate:       extract.MustCapture(`DATE\s+(\d{4}-\d{2}-\d{2})`, 1),
		FieldPONo:       extract.MustCapture(`CTM ORDER NO\.\s*(\S+)`, 1),
		FieldGoodQty:    extract.MustCapture(`TOTAL QUANTITY\s*(\d+)\s*PC`, 1),
		FieldDFCode:     extract.Literal("DF_SH"),
		FieldDeviceCode: extract.Literal("SDC100.01.02"),
	}

	waferIDs = extract.MustRepeating(`Wafer ID:\s*#?\s*((?:\d+,)*\d+)`, 1, ",")
)

// Parser is the packing list parser. It is stateless; the zero value is
// ready to use.
type Parser struct{}

// New returns a packing list parser.
func New() *Parser {
	return &Parser{}
}

// Name implements parser.Parser.
func (p *Parser) Name() string { return Name }

// Fields implements parser.Parser.
func (p *Parser) Fields() record.FieldMap { return fields }

// Run implements parser.Parser. A document without wafer ids yields an empty
// slice.
func (p *Parser) Run(ctx context.Context, text string) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, parser.NewError(Name, "run", err)
	}
	log := logging.FromContext(ctx).With(slog.String("parser", Name))

	values := make(map[string]extract.Value, len(fields))
	for name, s := range scalars {
		values[name] = s.Extract(text)
	}

	info, _ := table.Extract(ctx, strings.Split(text, "\n"), itemTable, 0)
	items := table.Format(ctx, info)

	device := items.Cell(0, colDevice)
	values[FieldOSATDevice] = extract.Part(device, "/", 0)
	values[FieldDevice] = extract.Part(device, "/", 1)

	lot := extract.Part(items.Cell(0, colLot), "/", 0)
	values[FieldLotNo] = lot
	values[FieldOSATLotNo] = lot

	values[FieldLotType] = extract.NotFound()
	if po, ok := values[FieldPONo].Get(); ok {
		values[FieldLotType] = extract.Rune(po, 4)
	}

	shared := make(map[string]string, len(values))
	for _, name := range fields.Names() {
		v, ok := values[name]
		if !ok {
			continue
		}
		if !v.OK() {
			log.Debug("field not found", slog.String("field", name))
		}
		shared[name] = v.OrEmpty()
	}

	wafers := waferIDs.Extract(text)
	log.Debug("packing list parsed",
		slog.Int("items", len(items.Rows)),
		slog.Int("wafers", len(wafers)))

	return fields.FanOut(shared, FieldWaferID, wafers), nil
}

var _ parser.Parser = (*Parser)(nil)
