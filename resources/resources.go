// Package resources wraps the backend's data endpoints. Every call goes
// through the shared apiclient.Client and therefore through its refresh path.
package resources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jrsteele09/acservice-dashboard/apiclient"
)

const (
	PathDashboardStats   = "/dashboard/stats"
	PathDashboardRevenue = "/dashboard/revenue"
	PathServicesChart    = "/dashboard/services-chart"
	PathCustomers        = "/customers"
	PathTechnicians      = "/technicians"
	PathServices         = "/services"
	PathSchedules        = "/schedules"
	PathInvoices         = "/invoices"
)

type API struct {
	client *apiclient.Client
}

func New(client *apiclient.Client) *API {
	return &API{client: client}
}

func (a *API) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats, err := apiclient.GetData[DashboardStats](ctx, a.client, PathDashboardStats, nil)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (a *API) RevenueChart(ctx context.Context, period RevenuePeriod) ([]RevenuePoint, error) {
	return apiclient.GetData[[]RevenuePoint](ctx, a.client, PathDashboardRevenue, url.Values{"period": {string(period)}})
}

func (a *API) ServicesChart(ctx context.Context) ([]ServiceShare, error) {
	return apiclient.GetData[[]ServiceShare](ctx, a.client, PathServicesChart, nil)
}

func (a *API) Customers(ctx context.Context, opts ListOptions) (apiclient.Page[Customer], error) {
	return apiclient.GetPage[Customer](ctx, a.client, PathCustomers, opts.Query())
}

func (a *API) Customer(ctx context.Context, id string) (*Customer, error) {
	c, err := apiclient.GetData[Customer](ctx, a.client, itemPath(PathCustomers, id), nil)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (a *API) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := apiclient.PostData[Customer](ctx, a.client, PathCustomers, in)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (a *API) UpdateCustomer(ctx context.Context, id string, in CustomerInput) (*Customer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := apiclient.PutData[Customer](ctx, a.client, itemPath(PathCustomers, id), in)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (a *API) DeleteCustomer(ctx context.Context, id string) error {
	return a.client.Delete(ctx, itemPath(PathCustomers, id))
}

func (a *API) Technicians(ctx context.Context, opts ListOptions) (apiclient.Page[Technician], error) {
	return apiclient.GetPage[Technician](ctx, a.client, PathTechnicians, opts.Query())
}

func (a *API) Technician(ctx context.Context, id string) (*Technician, error) {
	t, err := apiclient.GetData[Technician](ctx, a.client, itemPath(PathTechnicians, id), nil)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (a *API) Services(ctx context.Context, opts ListOptions) (apiclient.Page[Service], error) {
	return apiclient.GetPage[Service](ctx, a.client, PathServices, opts.Query())
}

func (a *API) Schedules(ctx context.Context, opts ListOptions) (apiclient.Page[Schedule], error) {
	return apiclient.GetPage[Schedule](ctx, a.client, PathSchedules, opts.Query())
}

func (a *API) Invoices(ctx context.Context, opts ListOptions) (apiclient.Page[Invoice], error) {
	return apiclient.GetPage[Invoice](ctx, a.client, PathInvoices, opts.Query())
}

func (a *API) Invoice(ctx context.Context, id string) (*Invoice, error) {
	inv, err := apiclient.GetData[Invoice](ctx, a.client, itemPath(PathInvoices, id), nil)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func itemPath(collection, id string) string {
	return fmt.Sprintf("%s/%s", collection, url.PathEscape(id))
}
