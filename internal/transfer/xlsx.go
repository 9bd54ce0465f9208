package transfer

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"foyer/internal/core"
)

// XLSX renders the dataset as a workbook with one sheet per collection.
// Amounts are written as plain Ariary integers.
func XLSX(state core.State) ([]byte, error) {
	xlsx := excelize.NewFile()

	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	if err := xlsx.SetSheetName(sheet, "Transactions"); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	writeTransactions(xlsx, "Transactions", state.Transactions)

	if _, err := xlsx.NewSheet("Récurrents"); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	writeTemplates(xlsx, "Récurrents", state.Templates)

	if _, err := xlsx.NewSheet("Budgets"); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	writeBudgets(xlsx, "Budgets", state.Budgets)

	xlsx.SetActiveSheet(0)

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(col rune, row int) string {
	return fmt.Sprintf("%c%d", col, row)
}

func writeTransactions(xlsx *excelize.File, sheet string, transactions []core.Transaction) {
	_ = xlsx.SetColWidth(sheet, "A", "A", 12)
	_ = xlsx.SetColWidth(sheet, "B", "B", 40)
	_ = xlsx.SetColWidth(sheet, "C", "F", 14)

	for i, header := range []string{"Date", "Description", "Catégorie", "Type", "Montant (Ar)", "Propriétaire"} {
		_ = xlsx.SetCellValue(sheet, cell('A'+rune(i), 1), header)
	}
	for i, t := range transactions {
		row := i + 2
		_ = xlsx.SetCellValue(sheet, cell('A', row), t.Date.String())
		_ = xlsx.SetCellValue(sheet, cell('B', row), t.Description)
		_ = xlsx.SetCellValue(sheet, cell('C', row), string(t.Category))
		_ = xlsx.SetCellValue(sheet, cell('D', row), string(t.Type))
		_ = xlsx.SetCellValue(sheet, cell('E', row), t.Amount.Units)
		_ = xlsx.SetCellValue(sheet, cell('F', row), t.OwnerID)
	}
}

func writeTemplates(xlsx *excelize.File, sheet string, templates []core.FixedTemplate) {
	_ = xlsx.SetColWidth(sheet, "A", "A", 40)
	_ = xlsx.SetColWidth(sheet, "B", "E", 14)

	for i, header := range []string{"Description", "Catégorie", "Type", "Montant (Ar)", "Propriétaire"} {
		_ = xlsx.SetCellValue(sheet, cell('A'+rune(i), 1), header)
	}
	for i, f := range templates {
		row := i + 2
		_ = xlsx.SetCellValue(sheet, cell('A', row), f.Description)
		_ = xlsx.SetCellValue(sheet, cell('B', row), string(f.Category))
		_ = xlsx.SetCellValue(sheet, cell('C', row), string(f.Type))
		_ = xlsx.SetCellValue(sheet, cell('D', row), f.Amount.Units)
		_ = xlsx.SetCellValue(sheet, cell('E', row), f.OwnerID)
	}
}

func writeBudgets(xlsx *excelize.File, sheet string, budgets []core.MonthlyBudget) {
	_ = xlsx.SetColWidth(sheet, "A", "B", 18)

	_ = xlsx.SetCellValue(sheet, cell('A', 1), "Catégorie")
	_ = xlsx.SetCellValue(sheet, cell('B', 1), "Limite (Ar)")
	for i, b := range budgets {
		row := i + 2
		_ = xlsx.SetCellValue(sheet, cell('A', row), string(b.Category))
		_ = xlsx.SetCellValue(sheet, cell('B', row), b.Limit.Units)
	}
}
