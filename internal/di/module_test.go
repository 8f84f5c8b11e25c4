package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/adapter/payment"
	"github.com/polkiloo/storefront/internal/app"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/storage/postgres"
	"github.com/polkiloo/storefront/internal/test"
	"github.com/polkiloo/storefront/internal/worker"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:               ":0",
		DatabaseURI:              "postgres://stub",
		CalendarURL:              "http://localhost/calendar.csv",
		SiteName:                 "Storefront",
		AdminTokenSecret:         "secret",
		CapacityMode:             config.CapacityAtomic,
		ConfirmationPollInterval: time.Millisecond,
		WorkerPoolSize:           1,
		ShutdownTimeout:          time.Millisecond,
		MaxConfirmationsBatch:    1,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	adminRepo := test.NewAdminRepositoryStub()
	orderRepo := &test.OrderRepositoryStub{}
	calendarStub := &test.CalendarStub{Days: []model.CalendarEntry{{Date: "March 1, 2025", Limit: 5}}}
	gateway := &test.GatewayStub{}

	var (
		facade     *app.StorefrontFacade
		httpFacade handlers.StorefrontFacade
		dispatcher *worker.ConfirmationDispatcher
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.AdminRepository(adminRepo)),
			fx.Replace(repository.OrderRepository(orderRepo)),
			fx.Replace(repository.CapacityCalendar(calendarStub)),
			fx.Replace(payment.Gateway(gateway)),
		),
		fx.Populate(&facade, &httpFacade, &dispatcher),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil || httpFacade == nil || dispatcher == nil {
		t.Fatal("expected storefront facade, handler facade and dispatcher instances")
	}

	days, err := facade.CapacityStatus(context.Background())
	if err != nil || len(days) != 1 {
		t.Fatalf("expected graph to use replaced calendar, got %+v %v", days, err)
	}
}
