package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"tourdesk/internal/model"
	"tourdesk/internal/view"
)

const tourSheet = "Tours"

// tourHeaders are the Thai column headers of the downloadable workbook.
var tourHeaders = []string{
	"ชื่อทัวร์",
	"ซัพพลายเออร์",
	"ออกเดินทางจาก",
	"ท่าเรือ",
	"ราคาผู้ใหญ่",
	"ราคาเด็ก",
	"วันที่เริ่ม",
	"วันที่สิ้นสุด",
	"รวมค่าอุทยาน",
	"หมายเหตุ",
	"ผู้แก้ไขล่าสุด",
}

// BuildTourWorkbook renders the tour list as a spreadsheet.
func BuildTourWorkbook(tours []model.Tour) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), tourSheet); err != nil {
		return nil, err
	}

	for i, h := range tourHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(tourSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for rowIdx, t := range tours {
		parkFee := "ไม่รวม"
		if t.ParkFeeIncluded {
			parkFee = "รวม"
		}
		row := []interface{}{
			t.TourName,
			t.SupplierName,
			t.DepartureFrom,
			t.Pier,
			t.AdultPrice,
			t.ChildPrice,
			view.FormatDisplayDate(t.StartDate),
			view.FormatDisplayDate(t.EndDate),
			parkFee,
			t.Notes,
			t.UpdatedBy,
		}
		for colIdx, v := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(tourSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

// WorkbookFilename names the download with the current date.
func WorkbookFilename(now time.Time) string {
	return fmt.Sprintf("tours_%s.xlsx", now.Format("2006-01-02"))
}
