package projects

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/vivenda/marketplace-backend/internal/auth"
	"github.com/vivenda/marketplace-backend/pkg/lifecycle"
)

var inventoryColumns = []string{
	"Identifier", "Type", "Floor", "Area (sqm)", "Bedrooms", "Bathrooms",
	"Price (USD)", "Status",
}

// ExportInventory renders the project's unit inventory as an XLSX workbook
// with one summary row per status on a second sheet.
func (s *Service) ExportInventory(ctx context.Context, principal *auth.Principal, projectID uuid.UUID) (*bytes.Buffer, string, error) {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, "", err
	}
	if !principal.Manages(project.ManagerID) {
		return nil, "", &lifecycle.NotFoundError{Entity: "project", ID: projectID.String()}
	}
	assets, err := s.repo.ListAssets(ctx, projectID, AssetFilter{})
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inventory"
	f.SetSheetName("Sheet1", sheet)

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, "", err
	}
	for i, title := range inventoryColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(inventoryColumns), 1)
	f.SetCellStyle(sheet, "A1", endHeader, header)

	byStatus := map[AssetStatus]int{}
	for row, asset := range assets {
		byStatus[asset.Status]++
		values := []any{
			asset.Identifier,
			string(asset.AssetType),
			derefInt(asset.Floor),
			derefFloat(asset.AreaSqm),
			asset.Bedrooms,
			asset.Bathrooms,
			asset.PriceUSD,
			string(asset.Status),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	f.SetColWidth(sheet, "A", "H", 16)

	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, "", err
	}
	f.SetCellValue(summary, "A1", "Status")
	f.SetCellValue(summary, "B1", "Units")
	f.SetCellStyle(summary, "A1", "B1", header)
	for i, status := range []AssetStatus{AssetAvailable, AssetReserved, AssetSold, AssetDelivered} {
		f.SetCellValue(summary, fmt.Sprintf("A%d", i+2), string(status))
		f.SetCellValue(summary, fmt.Sprintf("B%d", i+2), byStatus[status])
	}
	f.SetCellValue(summary, "A7", "Total")
	f.SetCellValue(summary, "B7", len(assets))

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}
	name := fmt.Sprintf("%s-inventory-%s.xlsx", project.Slug, time.Now().UTC().Format("20060102"))
	return &buf, name, nil
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
