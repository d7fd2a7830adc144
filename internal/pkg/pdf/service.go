// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/stickerly/stickershop-backend/internal/config"
	"github.com/stickerly/stickershop-backend/internal/domain/currency"
	"github.com/stickerly/stickershop-backend/internal/domain/order"
)

// Service renders order invoices as PDF
type Service struct {
	config    *config.Config
	converter *currency.Converter
}

// NewService creates a new PDF service
func NewService(cfg *config.Config, converter *currency.Converter) *Service {
	return &Service{config: cfg, converter: converter}
}

// GenerateInvoice renders a PDF invoice for an order
func (s *Service) GenerateInvoice(ord *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.renderHTML(ord)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

type invoiceItem struct {
	Name     string
	Type     string
	Quantity int
	Price    string
	Total    string
}

type invoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	OrderNumber   string
	OrderDate     string
	Status        string
	Email         string
	Currency      string
	CompanyName   string
	CompanyURL    string
	Items         []invoiceItem
	Total         string
}

func (s *Service) renderHTML(ord *order.Order) (string, error) {
	data := invoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", ord.OrderNumber),
		InvoiceDate:   time.Now().Format("January 2, 2006"),
		OrderNumber:   ord.OrderNumber,
		OrderDate:     ord.CreatedAt.Format("January 2, 2006"),
		Status:        string(ord.Status),
		Email:         ord.Email,
		Currency:      ord.Currency,
		CompanyName:   s.config.App.CompanyName,
		CompanyURL:    s.config.App.CompanyURL,
		Items:         make([]invoiceItem, len(ord.Items)),
		Total:         s.converter.Format(float64(ord.TotalAmount)/100, ord.Currency, 2),
	}

	for i, item := range ord.Items {
		data.Items[i] = invoiceItem{
			Name:     item.Name,
			Type:     string(item.StickerType),
			Quantity: item.Quantity,
			Price:    s.converter.Format(item.Price, item.Currency, 2),
			Total:    s.converter.Format(item.Price*float64(item.Quantity), item.Currency, 2),
		}
	}

	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var invoiceTmpl = template.Must(template.New("invoice").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { display: flex; justify-content: space-between; margin-bottom: 30px;
                  border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #2563eb; margin-bottom: 10px; }
        .items-table { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 12px 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; font-weight: bold; }
        .num { text-align: right; width: 90px; }
        .totals { float: right; width: 280px; }
        .totals td { padding: 8px; border-bottom: 1px solid #eee; }
        .total-row { font-size: 18px; font-weight: bold; border-top: 2px solid #333 !important; }
        .status-badge { display: inline-block; padding: 4px 8px; border-radius: 4px;
                        font-size: 12px; font-weight: bold; text-transform: uppercase; }
        .status-paid { background-color: #dcfce7; color: #166534; }
        .status-pending { background-color: #fef3c7; color: #92400e; }
        .footer { margin-top: 50px; padding-top: 20px; border-top: 1px solid #eee;
                  text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <h1>{{.CompanyName}}</h1>
            <p>{{.CompanyURL}}</p>
        </div>
        <div style="text-align: right;">
            <div class="invoice-title">INVOICE</div>
            <p><strong>Invoice #:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Invoice Date:</strong> {{.InvoiceDate}}</p>
            <p><strong>Order #:</strong> {{.OrderNumber}}</p>
        </div>
    </div>

    <p><strong>Order Date:</strong> {{.OrderDate}}
       &nbsp; <strong>Billed To:</strong> {{.Email}}
       &nbsp; <span class="status-badge {{if eq .Status "paid"}}status-paid{{else}}status-pending{{end}}">{{.Status}}</span></p>

    <table class="items-table">
        <thead>
            <tr>
                <th>Sticker</th>
                <th>Type</th>
                <th class="num">Qty</th>
                <th class="num">Price</th>
                <th class="num">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Items}}
            <tr>
                <td><strong>{{.Name}}</strong></td>
                <td>{{.Type}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{.Price}}</td>
                <td class="num">{{.Total}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr class="total-row">
                <td>Total ({{.Currency}}):</td>
                <td class="num">{{.Total}}</td>
            </tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Thank you for your order!</p>
        <p>{{.CompanyName}} &middot; {{.CompanyURL}}</p>
    </div>
</body>
</html>
`))
