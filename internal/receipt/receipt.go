// Package receipt renders sales receipts as narrow thermal-style PDFs.
package receipt

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

// Render writes the receipt of trx. shopName is printed in the header.
func Render(trx *model.Transaction, shopName string) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: 140 + float64(len(trx.Details))*5},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, shopName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Struk Penjualan", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, trx.Invoice, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, trx.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if trx.CreatedBy != nil {
		pdf.CellFormat(contentW, 4, "Kasir: "+trx.CreatedBy.Name, "", 1, "L", false, 0, "")
	}
	if trx.Customer != nil {
		pdf.CellFormat(contentW, 4, "Pelanggan: "+trx.Customer.Name, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.52
	col2 := contentW * 0.14
	col3 := contentW * 0.34

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Produk", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range trx.Details {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		if len(name) > 24 {
			name = name[:23] + "."
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, rupiah(item.Subtotal.StringFixed(2)), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, rupiah(trx.TotalAmount.StringFixed(2)), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Bayar ("+string(trx.Payment)+")", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, rupiah(trx.PaidAmount.StringFixed(2)), "", 1, "R", false, 0, "")
	if trx.Payment == model.PaymentCredit {
		pdf.CellFormat(col1+col2, 4, "Sisa", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, rupiah(trx.Outstanding().StringFixed(2)), "", 1, "R", false, 0, "")
		pdf.CellFormat(col1+col2, 4, "Status", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, string(trx.Status), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Terima kasih atas kunjungan Anda", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipt: render: %w", err)
	}
	return buf.Bytes(), nil
}

func rupiah(amount string) string {
	return "Rp " + amount
}
