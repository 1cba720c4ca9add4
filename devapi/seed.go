package devapi

import (
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/acservice-dashboard/internal/utils"
	"github.com/jrsteele09/acservice-dashboard/resources"
	"github.com/jrsteele09/acservice-dashboard/users"
)

// Seeded accounts. All of them share SeedPassword.
const (
	SeedAdminEmail      = "admin@acservice.test"
	SeedTechnicianEmail = "budi@acservice.test"
	SeedCustomerEmail   = "sari@example.com"
	SeedPassword        = "Passw0rd1"
)

const dateLayout = "2006-01-02"

var seedPasswordHash = sync.OnceValues(func() (string, error) {
	return users.HashPassword(SeedPassword)
})

func seed(repo users.UserRepo) (*dataset, error) {
	hash, err := seedPasswordHash()
	if err != nil {
		return nil, err
	}
	now := NowTimeFunc().UTC()

	accounts := []*users.User{
		{ID: "usr-admin", Email: SeedAdminEmail, Name: "Admin Operator", Role: users.RoleAdmin},
		{ID: "usr-tech-1", Email: SeedTechnicianEmail, Name: "Budi Santoso", Role: users.RoleTechnician,
			Phone: utils.Ptr("+62 812 1111 2222"), Specialization: utils.Ptr("Split AC installation")},
		{ID: "usr-cust-1", Email: SeedCustomerEmail, Name: "Sari Wulandari", Role: users.RoleCustomer,
			Phone: utils.Ptr("+62 813 3333 4444"), Address: utils.Ptr("Jl. Melati 12, Bandung")},
	}
	for _, u := range accounts {
		u.PasswordHash = hash
		u.CreatedAt, u.UpdatedAt = now, now
		if err := repo.Upsert(u); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}

	d := newDataset()
	customers := []*resources.Customer{
		{ID: "cus-1", Name: "Sari Wulandari", Email: SeedCustomerEmail, Phone: "+62 813 3333 4444", Address: "Jl. Melati 12, Bandung"},
		{ID: "cus-2", Name: "Andi Pratama", Email: "andi@example.com", Phone: "+62 811 5555 6666", Address: "Jl. Kenanga 4, Jakarta"},
		{ID: "cus-3", Name: "Citra Lestari", Email: "citra@example.com", Phone: "+62 815 7777 8888", Address: "Jl. Mawar 9, Surabaya"},
	}
	for i, c := range customers {
		c.CreatedAt = now.AddDate(0, 0, -30+i)
		c.UpdatedAt = c.CreatedAt
		d.customers[c.ID] = c
	}

	technicians := []*resources.Technician{
		{ID: "tec-1", Name: "Budi Santoso", Email: SeedTechnicianEmail, Phone: "+62 812 1111 2222",
			Specialization: "Split AC installation", ExperienceYears: 6, Rating: 4.8, IsAvailable: true},
		{ID: "tec-2", Name: "Dewi Anggraini", Email: "dewi@acservice.test", Phone: "+62 812 9999 0000",
			Specialization: "Central AC repair", ExperienceYears: 3, Rating: 4.5, IsAvailable: false},
	}
	for _, t := range technicians {
		t.CreatedAt, t.UpdatedAt = now, now
		d.technicians[t.ID] = t
	}

	services := []*resources.Service{
		{ID: "svc-1", Name: "AC Installation", Description: "Install a new split unit", Price: 750000, DurationHours: 3, Category: resources.CategoryInstallation, IsActive: true},
		{ID: "svc-2", Name: "Routine Maintenance", Description: "Filter and coil check", Price: 150000, DurationHours: 1, Category: resources.CategoryMaintenance, IsActive: true},
		{ID: "svc-3", Name: "Compressor Repair", Description: "Diagnose and repair compressor faults", Price: 500000, DurationHours: 2, Category: resources.CategoryRepair, IsActive: true},
		{ID: "svc-4", Name: "Deep Cleaning", Description: "Full indoor and outdoor unit cleaning", Price: 200000, DurationHours: 1.5, Category: resources.CategoryCleaning, IsActive: false},
	}
	for _, s := range services {
		s.CreatedAt, s.UpdatedAt = now, now
		d.services[s.ID] = s
	}

	schedules := []*resources.Schedule{
		newSchedule("sch-1", d.customers["cus-1"], d.technicians["tec-1"], d.services["svc-1"], now.AddDate(0, 0, -3), "09:00", resources.ScheduleCompleted),
		newSchedule("sch-2", d.customers["cus-2"], d.technicians["tec-2"], d.services["svc-3"], now.AddDate(0, 0, 2), "13:30", resources.ScheduleConfirmed),
		newSchedule("sch-3", d.customers["cus-1"], d.technicians["tec-1"], d.services["svc-2"], now.AddDate(0, 0, 7), "10:00", resources.SchedulePending),
	}
	for _, s := range schedules {
		s.CreatedAt, s.UpdatedAt = now, now
		d.schedules[s.ID] = s
	}

	invoices := []*resources.Invoice{
		newInvoice("inv-1", "INV-0001", d.schedules["sch-1"], now.AddDate(0, 0, -3), resources.InvoicePaid),
		newInvoice("inv-2", "INV-0002", d.schedules["sch-2"], now, resources.InvoiceUnpaid),
	}
	for _, inv := range invoices {
		inv.CreatedAt, inv.UpdatedAt = now, now
		d.invoices[inv.ID] = inv
	}
	return d, nil
}

func newSchedule(id string, c *resources.Customer, t *resources.Technician, s *resources.Service, day time.Time, at string, status resources.ScheduleStatus) *resources.Schedule {
	return &resources.Schedule{
		ID:            id,
		CustomerID:    c.ID,
		TechnicianID:  t.ID,
		ServiceID:     s.ID,
		ScheduledDate: day.Format(dateLayout),
		ScheduledTime: at,
		Status:        status,
		Customer:      *c,
		Technician:    *t,
		Service:       *s,
	}
}

func newInvoice(id, number string, sch *resources.Schedule, issued time.Time, status resources.InvoiceStatus) *resources.Invoice {
	item := resources.InvoiceItem{
		ID:          id + "-item-1",
		InvoiceID:   id,
		ServiceID:   sch.ServiceID,
		Description: sch.Service.Name,
		Quantity:    1,
		UnitPrice:   sch.Service.Price,
		TotalPrice:  sch.Service.Price,
		Service:     sch.Service,
	}
	inv := &resources.Invoice{
		ID:            id,
		ScheduleID:    sch.ID,
		CustomerID:    sch.CustomerID,
		InvoiceNumber: number,
		TotalAmount:   item.TotalPrice,
		Status:        status,
		IssuedDate:    issued.Format(dateLayout),
		DueDate:       issued.AddDate(0, 0, 14).Format(dateLayout),
		Schedule:      *sch,
		Customer:      sch.Customer,
		InvoiceItems:  []resources.InvoiceItem{item},
	}
	if status == resources.InvoicePaid {
		inv.PaidDate = utils.Ptr(issued.Format(dateLayout))
	}
	return inv
}
