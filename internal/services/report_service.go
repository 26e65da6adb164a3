package services

import (
	"io"
	"time"

	"ispcrm/internal/models"
	"ispcrm/internal/pdf"
	"ispcrm/internal/repositories"
)

// SalesSummary aggregates pipeline counters for the dashboard.
type SalesSummary struct {
	LeadsByStatus       map[string]int `json:"leads_by_status"`
	DealsByStatus       map[string]int `json:"deals_by_status"`
	TotalApprovedAmount float64        `json:"total_approved_amount"`
}

type ReportService struct {
	leadRepo     *repositories.LeadRepository
	dealRepo     *repositories.DealRepository
	approvalRepo *repositories.ApprovalRepository
	generator    pdf.Generator
	now          func() time.Time
}

func NewReportService(leadRepo *repositories.LeadRepository, dealRepo *repositories.DealRepository, approvalRepo *repositories.ApprovalRepository, generator pdf.Generator) *ReportService {
	return &ReportService{
		leadRepo:     leadRepo,
		dealRepo:     dealRepo,
		approvalRepo: approvalRepo,
		generator:    generator,
		now:          time.Now,
	}
}

func (s *ReportService) Summary() (*SalesSummary, error) {
	leads, err := s.leadRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	deals, err := s.dealRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	total, err := s.dealRepo.TotalApprovedAmount()
	if err != nil {
		return nil, err
	}
	return &SalesSummary{
		LeadsByStatus:       leads,
		DealsByStatus:       deals,
		TotalApprovedAmount: total,
	}, nil
}

// Deals returns the paginated deals listing for the management report.
func (s *ReportService) Deals(page, limit int) ([]*models.Deal, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.dealRepo.ListPaginated(limit, (page-1)*limit)
}

// ApprovalAudit returns the resolved price-approval history, optionally
// filtered by status.
func (s *ReportService) ApprovalAudit(status string, page, limit int) ([]*models.ApprovalAuditRow, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return s.approvalRepo.AuditList(status, limit, (page-1)*limit)
}

// ExportSalesReport streams the summary plus the latest deals as a PDF.
func (s *ReportService) ExportSalesReport(generatedBy string, w io.Writer) error {
	summary, err := s.Summary()
	if err != nil {
		return err
	}
	deals, err := s.dealRepo.ListPaginated(50, 0)
	if err != nil {
		return err
	}

	rows := make([]pdf.ReportDealRow, 0, len(deals))
	for _, d := range deals {
		rows = append(rows, pdf.ReportDealRow{
			ID:          d.ID,
			Title:       d.Title,
			Status:      d.Status,
			TotalAmount: d.TotalAmount,
			CreatedAt:   d.CreatedAt,
		})
	}

	return s.generator.GenerateSalesReport(pdf.SalesReportData{
		GeneratedAt:         s.now(),
		GeneratedBy:         generatedBy,
		LeadsByStatus:       summary.LeadsByStatus,
		DealsByStatus:       summary.DealsByStatus,
		TotalApprovedAmount: summary.TotalApprovedAmount,
		Deals:               rows,
	}, w)
}
