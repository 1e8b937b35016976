package contracts

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/vivenda/marketplace-backend/internal/auth"
)

// Statement renders the payment schedule of one of the buyer's own
// contracts as a PDF.
func (s *Service) Statement(ctx context.Context, principal *auth.Principal, contractID uuid.UUID) (*bytes.Buffer, string, error) {
	contract, err := s.GetMine(ctx, principal, contractID)
	if err != nil {
		return nil, "", err
	}
	return renderStatement(contract)
}

// ProjectStatement is the manager's route to the same document.
func (s *Service) ProjectStatement(ctx context.Context, principal *auth.Principal, projectID, contractID uuid.UUID) (*bytes.Buffer, string, error) {
	contract, err := s.Get(ctx, principal, projectID, contractID)
	if err != nil {
		return nil, "", err
	}
	return renderStatement(contract)
}

func renderStatement(contract *BuyerContract) (*bytes.Buffer, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Payment Statement", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	if contract.Asset != nil {
		unit := contract.Asset.Identifier
		if contract.Asset.Project != nil {
			unit = contract.Asset.Project.Title + " / " + unit
		}
		pdf.CellFormat(0, 6, "Unit: "+unit, "", 1, "L", false, 0, "")
	}
	if contract.Buyer != nil {
		pdf.CellFormat(0, 6, "Buyer: "+contract.Buyer.FullName(), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Total price: $%.2f", contract.TotalPrice), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Outstanding: $%.2f", contract.OutstandingBalance()), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Status: "+string(contract.Status), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{30, 30, 35, 25, 30}
	headers := []string{"Due date", "Amount", "Concept", "Status", "Paid"}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(0, 0, 0)
	fill := false
	pdf.SetFillColor(242, 242, 242)
	for _, item := range contract.Payments {
		paid := ""
		if item.PaidDate != nil {
			paid = item.PaidDate.Format("2006-01-02")
		}
		row := []string{
			item.DueDate.Format("2006-01-02"),
			fmt.Sprintf("$%.2f", item.AmountUSD),
			string(item.Concept),
			string(item.Status),
			paid,
		}
		for i, v := range row {
			pdf.CellFormat(widths[i], 7, v, "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, "Generated "+time.Now().UTC().Format("2006-01-02 15:04 UTC"), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render statement: %w", err)
	}
	name := fmt.Sprintf("statement-%s.pdf", contract.ID)
	return &buf, name, nil
}
