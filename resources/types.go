package resources

import (
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/acservice-dashboard/users"
)

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Technician struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Specialization  string    `json:"specialization"`
	ExperienceYears int       `json:"experience_years"`
	Rating          float64   `json:"rating"`
	IsAvailable     bool      `json:"is_available"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ServiceCategory string

const (
	CategoryInstallation ServiceCategory = "installation"
	CategoryMaintenance  ServiceCategory = "maintenance"
	CategoryRepair       ServiceCategory = "repair"
	CategoryCleaning     ServiceCategory = "cleaning"
)

type Service struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         float64         `json:"price"`
	DurationHours float64         `json:"duration_hours"`
	Category      ServiceCategory `json:"category"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ScheduleStatus string

const (
	SchedulePending    ScheduleStatus = "pending"
	ScheduleConfirmed  ScheduleStatus = "confirmed"
	ScheduleInProgress ScheduleStatus = "in_progress"
	ScheduleCompleted  ScheduleStatus = "completed"
	ScheduleCancelled  ScheduleStatus = "cancelled"
)

type Schedule struct {
	ID            string         `json:"id"`
	CustomerID    string         `json:"customer_id"`
	TechnicianID  string         `json:"technician_id"`
	ServiceID     string         `json:"service_id"`
	ScheduledDate string         `json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime string         `json:"scheduled_time"` // HH:MM
	Status        ScheduleStatus `json:"status"`
	Notes         *string        `json:"notes,omitempty"`
	Customer      Customer       `json:"customer"`
	Technician    Technician     `json:"technician"`
	Service       Service        `json:"service"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type InvoiceStatus string

const (
	InvoiceUnpaid    InvoiceStatus = "unpaid"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

type Invoice struct {
	ID            string        `json:"id"`
	ScheduleID    string        `json:"schedule_id"`
	CustomerID    string        `json:"customer_id"`
	InvoiceNumber string        `json:"invoice_number"`
	TotalAmount   float64       `json:"total_amount"`
	Status        InvoiceStatus `json:"status"`
	IssuedDate    string        `json:"issued_date"`
	DueDate       string        `json:"due_date"`
	PaidDate      *string       `json:"paid_date,omitempty"`
	Notes         *string       `json:"notes,omitempty"`
	Schedule      Schedule      `json:"schedule"`
	Customer      Customer      `json:"customer"`
	InvoiceItems  []InvoiceItem `json:"invoice_items"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type InvoiceItem struct {
	ID          string  `json:"id"`
	InvoiceID   string  `json:"invoice_id"`
	ServiceID   string  `json:"service_id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
	Service     Service `json:"service"`
}

type DashboardStats struct {
	TotalCustomers     int     `json:"total_customers"`
	TotalTechnicians   int     `json:"total_technicians"`
	TotalServices      int     `json:"total_services"`
	PendingInvoices    int     `json:"pending_invoices"`
	MonthlyRevenue     float64 `json:"monthly_revenue"`
	CompletedSchedules int     `json:"completed_schedules"`
}

// RevenuePoint is one bucket of the revenue chart
type RevenuePoint struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

// ServiceShare is one slice of the services chart
type ServiceShare struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type RevenuePeriod string

const (
	PeriodWeek  RevenuePeriod = "week"
	PeriodMonth RevenuePeriod = "month"
	PeriodYear  RevenuePeriod = "year"
)

// ParsePeriod defaults to month for empty or unknown input
func ParsePeriod(s string) RevenuePeriod {
	switch p := RevenuePeriod(strings.ToLower(s)); p {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return p
	}
	return PeriodMonth
}

// CustomerInput is the body of create and update customer calls
type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (c CustomerInput) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if err := users.ValidateEmail(c.Email); err != nil {
		return err
	}
	if strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("phone is required")
	}
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}
