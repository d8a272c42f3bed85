package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ReportExporter renders report rows into a downloadable document.
// Returns (content, filename, mime type, error).
type ReportExporter interface {
	Export(reportType, format string, data ReportData) ([]byte, string, string, error)
	ExportReceipt(d *ReceiptData) ([]byte, string, string, error)
}

type reportExporter struct{}

func NewReportExporter() ReportExporter {
	return &reportExporter{}
}

func (e *reportExporter) Export(reportType, format string, data ReportData) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch reportType {
	case ReportTypeBookings:
		return e.exportBookingsByFormat(format, timestamp, data.Bookings)
	case ReportTypeRevenue:
		return e.exportRevenueByFormat(format, timestamp, data.Revenue)
	default:
		return nil, "", "", fmt.Errorf("unsupported report type: %s", reportType)
	}
}

//// ============================
/// BOOKINGS REPORT
//// ============================

func (e *reportExporter) exportBookingsByFormat(format, timestamp string, rows []BookingReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportBookingsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("bookings_report_%s.xlsx", timestamp),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatPDF:
		data, err := e.exportBookingsPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("bookings_report_%s.pdf", timestamp), "application/pdf", nil
	case FormatCSV, "":
		data, err := e.exportBookingsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("bookings_report_%s.csv", timestamp), "text/csv", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (e *reportExporter) exportBookingsCSV(rows []BookingReportRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"id", "date", "start_time", "van", "user_id", "status", "payment_status", "total_amount", "discount_amount", "coupon_code", "created_at"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.Date,
			r.StartTime,
			r.VanName,
			strconv.FormatUint(uint64(r.UserID), 10),
			r.Status,
			r.PaymentStatus,
			fmt.Sprintf("%.2f", r.TotalAmount),
			fmt.Sprintf("%.2f", r.DiscountAmount),
			r.CouponCode,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportBookingsExcel(rows []BookingReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"id", "date", "start_time", "van", "user_id", "status", "payment_status", "total_amount", "discount_amount", "coupon_code", "created_at"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, r := range rows {
		values := []interface{}{
			r.ID, r.Date, r.StartTime, r.VanName, r.UserID, r.Status,
			r.PaymentStatus, r.TotalAmount, r.DiscountAmount, r.CouponCode,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for cIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(cIdx+1, rIdx+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportBookingsPDF(rows []BookingReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Bookings Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	headers := []string{"ID", "Date", "Time", "Van", "User", "Status", "Payment", "Total", "Discount", "Coupon"}
	widths := []float64{15, 25, 18, 45, 18, 28, 22, 25, 25, 30}

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, fmt.Sprint(r.ID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, r.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, r.StartTime, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, r.VanName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprint(r.UserID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[5], 6, r.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[6], 6, r.PaymentStatus, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[7], 6, fmt.Sprintf("%.2f", r.TotalAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[8], 6, fmt.Sprintf("%.2f", r.DiscountAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[9], 6, r.CouponCode, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//// ============================
/// REVENUE REPORT
//// ============================

func (e *reportExporter) exportRevenueByFormat(format, timestamp string, rows []RevenueReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportRevenueExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("revenue_report_%s.xlsx", timestamp),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatPDF:
		data, err := e.exportRevenuePDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("revenue_report_%s.pdf", timestamp), "application/pdf", nil
	case FormatCSV, "":
		data, err := e.exportRevenueCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("revenue_report_%s.csv", timestamp), "text/csv", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (e *reportExporter) exportRevenueCSV(rows []RevenueReportRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write([]string{"date", "van_id", "van", "bookings", "gross_amount", "discount_total", "net_amount"}); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			r.Date,
			strconv.FormatUint(uint64(r.VanID), 10),
			r.VanName,
			strconv.FormatInt(r.Bookings, 10),
			fmt.Sprintf("%.2f", r.GrossAmount),
			fmt.Sprintf("%.2f", r.DiscountTotal),
			fmt.Sprintf("%.2f", r.NetAmount),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportRevenueExcel(rows []RevenueReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Revenue"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"date", "van_id", "van", "bookings", "gross_amount", "discount_total", "net_amount"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, r := range rows {
		values := []interface{}{r.Date, r.VanID, r.VanName, r.Bookings, r.GrossAmount, r.DiscountTotal, r.NetAmount}
		for cIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(cIdx+1, rIdx+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportRevenuePDF(rows []RevenueReportRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Revenue Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	headers := []string{"Date", "Van", "Bookings", "Gross", "Discount", "Net"}
	widths := []float64{28, 55, 22, 28, 28, 28}

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	var totalNet float64
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, r.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, r.VanName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprint(r.Bookings), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", r.GrossAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", r.DiscountTotal), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, fmt.Sprintf("%.2f", r.NetAmount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
		totalNet += r.NetAmount
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3]+widths[4], 7, "Total net", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[5], 7, fmt.Sprintf("%.2f", totalNet), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//// ============================
/// BOOKING RECEIPT
//// ============================

// ExportReceipt renders a single booking as a customer-facing PDF receipt.
func (e *reportExporter) ExportReceipt(d *ReceiptData) ([]byte, string, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 12, "SparkleWash Receipt")
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 11)
	line := func(label, value string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(50, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(120, 8, value, "", 0, "L", false, 0, "")
		pdf.Ln(8)
	}

	line("Booking ID", fmt.Sprint(d.BookingID))
	line("Date", d.Date)
	line("Time", fmt.Sprintf("%s - %s", d.StartTime, d.EndTime))
	line("Van", d.VanName)
	if d.PackageName != "" {
		line("Package", d.PackageName)
	}
	if len(d.ServiceNames) > 0 {
		line("Services", strings.Join(d.ServiceNames, ", "))
	}
	line("Address", strings.TrimRight(fmt.Sprintf("%s, %s %s", d.AddressLine, d.City, d.Pincode), ", "))
	pdf.Ln(4)

	line("Amount", fmt.Sprintf("%.2f", d.TotalAmount))
	if d.DiscountAmount > 0 {
		discount := fmt.Sprintf("-%.2f", d.DiscountAmount)
		if d.CouponCode != "" {
			discount = fmt.Sprintf("-%.2f (%s)", d.DiscountAmount, d.CouponCode)
		}
		line("Discount", discount)
	}
	pdf.SetFont("Arial", "B", 12)
	line("Paid", fmt.Sprintf("%.2f", d.TotalAmount-d.DiscountAmount))
	if d.PaymentID != "" {
		pdf.SetFont("Arial", "", 9)
		line("Payment ref", d.PaymentID)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", "", err
	}
	filename := fmt.Sprintf("receipt_booking_%d.pdf", d.BookingID)
	return buf.Bytes(), filename, "application/pdf", nil
}
