package payroll

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	RegisterSheet = "Payroll Register"
	LinesSheet    = "Deduction Lines"
)

// =============================================================================
// XLSX REGISTER
// =============================================================================

// WriteRegisterXLSX writes the run as a workbook with two sheets: one row
// per payslip with a column per deduction code and a totals row, and one
// row per deduction line.
func WriteRegisterXLSX(run *Run, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RegisterSheet); err != nil {
		return fmt.Errorf("failed to create register sheet: %w", err)
	}
	if _, err := f.NewSheet(LinesSheet); err != nil {
		return fmt.Errorf("failed to create lines sheet: %w", err)
	}

	if err := writeRegister(f, run); err != nil {
		return err
	}
	if err := writeLines(f, run); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRegister(f *excelize.File, run *Run) error {
	headers := []interface{}{"Staff ID", "Name", "Gross"}
	for _, c := range run.Totals.ByCode {
		headers = append(headers, c.Code)
	}
	headers = append(headers, "Total Deductions", "Net", "Employer Contributions", "Review")
	if err := setRow(f, RegisterSheet, 1, headers); err != nil {
		return err
	}

	row := 2
	for _, slip := range run.Payslips {
		r := slip.Result
		byCode := make(map[string]float64, len(r.Deductions))
		for _, d := range r.Deductions {
			byCode[d.Code] = d.Amount.InexactFloat64()
		}

		values := []interface{}{string(slip.StaffID), slip.StaffName, r.GrossSalary.InexactFloat64()}
		for _, c := range run.Totals.ByCode {
			values = append(values, byCode[c.Code])
		}
		review := ""
		if r.RequiresReview {
			review = "REVIEW"
		}
		values = append(values,
			r.TotalDeductions.InexactFloat64(),
			r.NetSalary.InexactFloat64(),
			r.TotalEmployerContributions.InexactFloat64(),
			review,
		)
		if err := setRow(f, RegisterSheet, row, values); err != nil {
			return err
		}
		row++
	}

	totals := []interface{}{"TOTAL", fmt.Sprintf("%d staff", run.Totals.Headcount), run.Totals.Gross.InexactFloat64()}
	for _, c := range run.Totals.ByCode {
		totals = append(totals, c.Amount.InexactFloat64())
	}
	totals = append(totals,
		run.Totals.Deductions.InexactFloat64(),
		run.Totals.Net.InexactFloat64(),
		run.Totals.EmployerContributions.InexactFloat64(),
		fmt.Sprintf("%d flagged", len(run.Totals.FlaggedForReview)),
	)
	return setRow(f, RegisterSheet, row, totals)
}

func writeLines(f *excelize.File, run *Run) error {
	headers := []interface{}{"Staff ID", "Name", "Code", "Deduction", "Taxable Base", "Amount", "Employer Contribution"}
	if err := setRow(f, LinesSheet, 1, headers); err != nil {
		return err
	}

	row := 2
	for _, slip := range run.Payslips {
		for _, d := range slip.Result.Deductions {
			values := []interface{}{
				string(slip.StaffID),
				slip.StaffName,
				d.Code,
				d.Name,
				d.TaxableBase.InexactFloat64(),
				d.Amount.InexactFloat64(),
				d.EmployerContribution.InexactFloat64(),
			}
			if err := setRow(f, LinesSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
