package reports

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sparklewash/carwash-backend/middleware"
)

var (
	ErrReceiptNotFound  = errors.New("booking receipt not found")
	ErrReceiptForbidden = errors.New("receipt belongs to another customer")
)

type Service interface {
	ExportReport(ctx context.Context, reportType, format string, filter ReportFilter) ([]byte, string, string, error)
	ExportReceipt(ctx context.Context, bookingID uint, auth middleware.AuthContext) ([]byte, string, string, error)
}

type service struct {
	repo     Repository
	exporter ReportExporter
}

func NewService(repo Repository) Service {
	return &service{repo: repo, exporter: NewReportExporter()}
}

func (s *service) ExportReport(ctx context.Context, reportType, format string, filter ReportFilter) ([]byte, string, string, error) {
	var data ReportData

	switch reportType {
	case ReportTypeBookings:
		rows, err := s.repo.GetBookingRows(ctx, filter)
		if err != nil {
			return nil, "", "", err
		}
		data.Bookings = rows
	case ReportTypeRevenue:
		rows, err := s.repo.GetRevenueRows(ctx, filter)
		if err != nil {
			return nil, "", "", err
		}
		data.Revenue = rows
	default:
		return nil, "", "", fmt.Errorf("unsupported report type: %s", reportType)
	}

	return s.exporter.Export(reportType, format, data)
}

func (s *service) ExportReceipt(ctx context.Context, bookingID uint, auth middleware.AuthContext) ([]byte, string, string, error) {
	d, err := s.repo.GetReceiptData(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrReceiptNotFound
		}
		return nil, "", "", err
	}
	if d.UserID != auth.UserID && !auth.CanManageVan(d.VanID) {
		return nil, "", "", ErrReceiptForbidden
	}
	return s.exporter.ExportReceipt(d)
}
