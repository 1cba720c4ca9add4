package resources_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/acservice-dashboard/apiclient"
	"github.com/jrsteele09/acservice-dashboard/devapi"
	"github.com/jrsteele09/acservice-dashboard/internal/config"
	"github.com/jrsteele09/acservice-dashboard/resources"
	"github.com/jrsteele09/acservice-dashboard/session"
	"github.com/jrsteele09/acservice-dashboard/tokenstore"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	api     *devapi.Server
	res     *resources.API
	manager *session.Manager
}

func setup(t *testing.T, email string) *testFixture {
	t.Helper()
	api, err := devapi.New(config.DevAPI{})
	require.NoError(t, err)
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	store := tokenstore.NewMemoryStore()
	client := apiclient.New(srv.URL+devapi.BasePath, store)
	m := session.NewManager(client, store)
	_, err = m.Login(context.Background(), email, devapi.SeedPassword)
	require.NoError(t, err)

	return &testFixture{api: api, res: resources.New(client), manager: m}
}

func TestCustomersLifecycle(t *testing.T) {
	f := setup(t, devapi.SeedAdminEmail)
	ctx := context.Background()

	page, err := f.res.Customers(ctx, resources.ListOptions{Search: "andi"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "Andi Pratama", page.Data[0].Name)

	created, err := f.res.CreateCustomer(ctx, resources.CustomerInput{
		Name: "Gita", Email: "gita@example.com", Phone: "0813", Address: "Jl. Dahlia 3",
	})
	require.NoError(t, err)

	got, err := f.res.Customer(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "gita@example.com", got.Email)

	updated, err := f.res.UpdateCustomer(ctx, created.ID, resources.CustomerInput{
		Name: "Gita Ayu", Email: "gita@example.com", Phone: "0813", Address: "Jl. Dahlia 3",
	})
	require.NoError(t, err)
	require.Equal(t, "Gita Ayu", updated.Name)

	require.NoError(t, f.res.DeleteCustomer(ctx, created.ID))
	_, err = f.res.Customer(ctx, created.ID)
	require.True(t, apiclient.IsStatus(err, http.StatusNotFound))
}

func TestCreateCustomerValidatesBeforeSending(t *testing.T) {
	f := setup(t, devapi.SeedAdminEmail)
	_, err := f.res.CreateCustomer(context.Background(), resources.CustomerInput{Name: "No Email"})
	require.Error(t, err)
	require.Equal(t, 0, apiclient.StatusCode(err))
}

func TestDashboardCalls(t *testing.T) {
	f := setup(t, devapi.SeedAdminEmail)
	ctx := context.Background()

	stats, err := f.res.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalCustomers)

	points, err := f.res.RevenueChart(ctx, resources.PeriodMonth)
	require.NoError(t, err)
	require.Len(t, points, 5)

	shares, err := f.res.ServicesChart(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, shares)
}

func TestDirectoriesSurviveTokenExpiry(t *testing.T) {
	f := setup(t, devapi.SeedAdminEmail)
	ctx := context.Background()
	f.api.ExpireAccessTokens()

	techs, err := f.res.Technicians(ctx, resources.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, techs.Pagination.Total)

	tech, err := f.res.Technician(ctx, techs.Data[0].ID)
	require.NoError(t, err)
	require.Equal(t, techs.Data[0].Name, tech.Name)

	services, err := f.res.Services(ctx, resources.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, services.Data, 2)
	require.Equal(t, 2, services.Pagination.TotalPages)

	require.EqualValues(t, 1, f.api.RefreshCalls())
}

func TestCustomerSeesOwnSchedulesAndInvoices(t *testing.T) {
	f := setup(t, devapi.SeedCustomerEmail)
	ctx := context.Background()

	schedules, err := f.res.Schedules(ctx, resources.ListOptions{})
	require.NoError(t, err)
	require.Len(t, schedules.Data, 2)

	invoices, err := f.res.Invoices(ctx, resources.ListOptions{})
	require.NoError(t, err)
	require.Len(t, invoices.Data, 1)

	inv, err := f.res.Invoice(ctx, invoices.Data[0].ID)
	require.NoError(t, err)
	require.Len(t, inv.InvoiceItems, 1)
	require.Equal(t, resources.InvoicePaid, inv.Status)

	_, err = f.res.Technicians(ctx, resources.ListOptions{})
	require.True(t, apiclient.IsStatus(err, http.StatusForbidden))
}
