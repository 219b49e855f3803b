package mailbox

import "strings"

// gbkMail has a GBK encoded subject, one PDF attachment with an RFC 2231
// file name, and a text attachment.
var gbkMail = crlf(`From: Supplier <supplier@example.com>
To: shipping@example.com
Subject: =?GBK?B?W1BhY2thZ2VMaXN0XSDO5dTCyOu/4g==?=
Date: Thu, 16 May 2024 09:30:00 +0800
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="b1"

--b1
Content-Type: text/plain; charset=utf-8

Please find the packing list attached.
--b1
Content-Type: application/pdf
Content-Disposition: attachment; filename*=UTF-8''PL-%E5%85%A5%E5%BA%93.PDF
Content-Transfer-Encoding: base64

JVBERi0xLjQgZmFrZQ==
--b1
Content-Type: text/plain
Content-Disposition: attachment; filename="notes.txt"

not a pdf
--b1--
`)

// plainMail has no attachments.
var plainMail = crlf(`From: other@example.com
To: shipping@example.com
Subject: hello
MIME-Version: 1.0
Content-Type: text/plain

hi
`)

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}
