package devapi

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
	"github.com/jrsteele09/acservice-dashboard/internal/utils"
	"github.com/jrsteele09/acservice-dashboard/resources"
	"github.com/jrsteele09/acservice-dashboard/users"
)

// dataset holds the directory records served by the resource endpoints
type dataset struct {
	lock        sync.RWMutex
	customers   map[string]*resources.Customer
	technicians map[string]*resources.Technician
	services    map[string]*resources.Service
	schedules   map[string]*resources.Schedule
	invoices    map[string]*resources.Invoice
}

func newDataset() *dataset {
	return &dataset{
		customers:   make(map[string]*resources.Customer),
		technicians: make(map[string]*resources.Technician),
		services:    make(map[string]*resources.Service),
		schedules:   make(map[string]*resources.Schedule),
		invoices:    make(map[string]*resources.Invoice),
	}
}

// addDirectoryEntry mirrors a newly registered account into the customer or technician directory
func (d *dataset) addDirectoryEntry(u *users.User) {
	d.lock.Lock()
	defer d.lock.Unlock()

	id := uuid.New().String()
	switch u.Role {
	case users.RoleCustomer:
		d.customers[id] = &resources.Customer{
			ID: id, Name: u.Name, Email: u.Email,
			Phone: utils.Value(u.Phone), Address: utils.Value(u.Address),
			CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
		}
	case users.RoleTechnician:
		d.technicians[id] = &resources.Technician{
			ID: id, Name: u.Name, Email: u.Email,
			Phone: utils.Value(u.Phone), Specialization: utils.Value(u.Specialization),
			IsAvailable: true, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
		}
	}
}

func (d *dataset) listCustomers(opts resources.ListOptions) []resources.Customer {
	d.lock.RLock()
	defer d.lock.RUnlock()

	out := make([]resources.Customer, 0, len(d.customers))
	for _, c := range d.customers {
		if matches(opts.Search, c.Name, c.Email, c.Phone, c.Address) {
			out = append(out, *c)
		}
	}

	desc := opts.SortOrder == "desc"
	slices.SortStableFunc(out, func(a, b resources.Customer) int {
		var n int
		switch opts.SortBy {
		case "email":
			n = strings.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email))
		case "created_at":
			n = a.CreatedAt.Compare(b.CreatedAt)
		default:
			n = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		if n == 0 {
			n = strings.Compare(a.ID, b.ID)
		}
		if desc {
			return -n
		}
		return n
	})
	return out
}

func (d *dataset) getCustomer(id string) (*resources.Customer, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	c, ok := d.customers[id]
	if !ok {
		return nil, dasherrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (d *dataset) createCustomer(in resources.CustomerInput) (*resources.Customer, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	for _, c := range d.customers {
		if strings.EqualFold(c.Email, in.Email) {
			return nil, fmt.Errorf("customer with email %s already exists", in.Email)
		}
	}
	now := NowTimeFunc().UTC()
	c := &resources.Customer{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	d.customers[c.ID] = c
	cp := *c
	return &cp, nil
}

func (d *dataset) updateCustomer(id string, in resources.CustomerInput) (*resources.Customer, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	c, ok := d.customers[id]
	if !ok {
		return nil, dasherrors.ErrNotFound
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Address = strings.TrimSpace(in.Address)
	c.UpdatedAt = NowTimeFunc().UTC()
	cp := *c
	return &cp, nil
}

func (d *dataset) deleteCustomer(id string) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if _, ok := d.customers[id]; !ok {
		return dasherrors.ErrNotFound
	}
	delete(d.customers, id)
	return nil
}

func (d *dataset) listTechnicians(opts resources.ListOptions) []resources.Technician {
	d.lock.RLock()
	defer d.lock.RUnlock()

	out := make([]resources.Technician, 0, len(d.technicians))
	for _, t := range d.technicians {
		if matches(opts.Search, t.Name, t.Email, t.Specialization) {
			out = append(out, *t)
		}
	}
	slices.SortFunc(out, func(a, b resources.Technician) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID, b.ID))
	})
	return out
}

func (d *dataset) getTechnician(id string) (*resources.Technician, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	t, ok := d.technicians[id]
	if !ok {
		return nil, dasherrors.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (d *dataset) listServices(opts resources.ListOptions) []resources.Service {
	d.lock.RLock()
	defer d.lock.RUnlock()

	out := make([]resources.Service, 0, len(d.services))
	for _, s := range d.services {
		if matches(opts.Search, s.Name, s.Description, string(s.Category)) {
			out = append(out, *s)
		}
	}
	slices.SortFunc(out, func(a, b resources.Service) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID, b.ID))
	})
	return out
}

// listSchedules returns the schedules the user may see, soonest first
func (d *dataset) listSchedules(u *users.User, opts resources.ListOptions) []resources.Schedule {
	d.lock.RLock()
	defer d.lock.RUnlock()

	out := make([]resources.Schedule, 0, len(d.schedules))
	for _, s := range d.schedules {
		if scheduleVisible(u, s) && matches(opts.Search, s.Customer.Name, s.Technician.Name, s.Service.Name, string(s.Status)) {
			out = append(out, *s)
		}
	}
	slices.SortFunc(out, func(a, b resources.Schedule) int {
		return cmp.Or(
			strings.Compare(a.ScheduledDate, b.ScheduledDate),
			strings.Compare(a.ScheduledTime, b.ScheduledTime),
			strings.Compare(a.ID, b.ID),
		)
	})
	return out
}

func (d *dataset) listInvoices(u *users.User, opts resources.ListOptions) []resources.Invoice {
	d.lock.RLock()
	defer d.lock.RUnlock()

	out := make([]resources.Invoice, 0, len(d.invoices))
	for _, inv := range d.invoices {
		if invoiceVisible(u, inv) && matches(opts.Search, inv.InvoiceNumber, inv.Customer.Name, string(inv.Status)) {
			out = append(out, *inv)
		}
	}
	slices.SortFunc(out, func(a, b resources.Invoice) int {
		return cmp.Or(strings.Compare(b.IssuedDate, a.IssuedDate), strings.Compare(a.InvoiceNumber, b.InvoiceNumber))
	})
	return out
}

func (d *dataset) getInvoice(u *users.User, id string) (*resources.Invoice, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	inv, ok := d.invoices[id]
	if !ok || !invoiceVisible(u, inv) {
		return nil, dasherrors.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (d *dataset) stats(now time.Time) resources.DashboardStats {
	d.lock.RLock()
	defer d.lock.RUnlock()

	st := resources.DashboardStats{
		TotalCustomers:   len(d.customers),
		TotalTechnicians: len(d.technicians),
		TotalServices:    len(d.services),
	}
	month := now.Format("2006-01")
	for _, inv := range d.invoices {
		switch inv.Status {
		case resources.InvoiceUnpaid, resources.InvoiceOverdue:
			st.PendingInvoices++
		case resources.InvoicePaid:
			if strings.HasPrefix(inv.IssuedDate, month) {
				st.MonthlyRevenue += inv.TotalAmount
			}
		}
	}
	for _, s := range d.schedules {
		if s.Status == resources.ScheduleCompleted {
			st.CompletedSchedules++
		}
	}
	return st
}

// revenue buckets paid invoices by issue date: days of the last week,
// weeks of the current month or months of the current year
func (d *dataset) revenue(period resources.RevenuePeriod, now time.Time) []resources.RevenuePoint {
	d.lock.RLock()
	defer d.lock.RUnlock()

	var points []resources.RevenuePoint
	var bucket func(day time.Time) int
	switch period {
	case resources.PeriodWeek:
		start := now.Truncate(24*time.Hour).AddDate(0, 0, -6)
		for i := 0; i < 7; i++ {
			points = append(points, resources.RevenuePoint{Label: start.AddDate(0, 0, i).Format("Mon")})
		}
		bucket = func(day time.Time) int {
			return int(day.Sub(start).Hours() / 24)
		}
	case resources.PeriodYear:
		for m := time.January; m <= time.December; m++ {
			points = append(points, resources.RevenuePoint{Label: m.String()[:3]})
		}
		bucket = func(day time.Time) int {
			if day.Year() != now.Year() {
				return -1
			}
			return int(day.Month()) - 1
		}
	default:
		for w := 1; w <= 5; w++ {
			points = append(points, resources.RevenuePoint{Label: fmt.Sprintf("Week %d", w)})
		}
		bucket = func(day time.Time) int {
			if day.Year() != now.Year() || day.Month() != now.Month() {
				return -1
			}
			return (day.Day() - 1) / 7
		}
	}

	for _, inv := range d.invoices {
		if inv.Status != resources.InvoicePaid {
			continue
		}
		day, err := time.Parse(dateLayout, inv.IssuedDate)
		if err != nil {
			continue
		}
		if i := bucket(day); i >= 0 && i < len(points) {
			points[i].Revenue += inv.TotalAmount
		}
	}
	return points
}

// servicesChart counts schedules per service
func (d *dataset) servicesChart() []resources.ServiceShare {
	d.lock.RLock()
	defer d.lock.RUnlock()

	counts := map[string]int{}
	for _, s := range d.schedules {
		counts[s.Service.Name]++
	}
	out := make([]resources.ServiceShare, 0, len(counts))
	for name, n := range counts {
		out = append(out, resources.ServiceShare{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b resources.ServiceShare) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), strings.Compare(a.Name, b.Name))
	})
	return out
}

func scheduleVisible(u *users.User, s *resources.Schedule) bool {
	switch u.Role {
	case users.RoleAdmin:
		return true
	case users.RoleTechnician:
		return strings.EqualFold(s.Technician.Email, u.Email)
	case users.RoleCustomer:
		return strings.EqualFold(s.Customer.Email, u.Email)
	}
	return false
}

func invoiceVisible(u *users.User, inv *resources.Invoice) bool {
	switch u.Role {
	case users.RoleAdmin:
		return true
	case users.RoleTechnician:
		return strings.EqualFold(inv.Schedule.Technician.Email, u.Email)
	case users.RoleCustomer:
		return strings.EqualFold(inv.Customer.Email, u.Email)
	}
	return false
}

func matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}
