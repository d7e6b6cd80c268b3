package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/models"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
	"bitbucket.org/mmdatafocus/pricewatch_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("pricewatch")

var priceReportsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "pricewatch",
	Name:      "price_reports_created_total",
	Help:      "Price reports stored through the API.",
})

// parsePriceFilter reads the optional filter ids. Present but malformed values are rejected.
func parsePriceFilter(c *gin.Context) (models.PriceReportFilter, error) {
	var filter models.PriceReportFilter
	for _, f := range []struct {
		name string
		dest *int
	}{
		{"stateId", &filter.StateId},
		{"cityId", &filter.CityId},
		{"marketId", &filter.MarketId},
		{"itemId", &filter.ItemId},
		{"unitId", &filter.UnitId},
	} {
		id, err := utils.ParseOptionalId(c.Query(f.name))
		if err != nil {
			return filter, utils.NewValidationError(f.name, "numeric", fmt.Sprintf("%s must be a positive integer", f.name))
		}
		*f.dest = id
	}
	return filter, nil
}

func filterAttributes(filter models.PriceReportFilter) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.Int("filter.state_id", filter.StateId),
		attribute.Int("filter.city_id", filter.CityId),
		attribute.Int("filter.market_id", filter.MarketId),
		attribute.Int("filter.item_id", filter.ItemId),
		attribute.Int("filter.unit_id", filter.UnitId),
	)
}

// getPricesHandler serves one page of price reports. A filter id that is present but not a
// positive integer is a 400 "Invalid filter", not a 500.
func getPricesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parsePriceFilter(c)
		if err != nil {
			respondError(c, "getPricesHandler", err, errorMessages{validation: "Invalid filter"})
			return
		}
		page, limit := models.NormalizePage(c.Query("page"), c.Query("limit"))

		ctx, span := tracer.Start(c.Request.Context(), "ListPriceReports", filterAttributes(filter))
		defer span.End()

		result, err := models.ListPriceReports(ctx, filter, page, limit)
		if err != nil {
			span.RecordError(err)
			respondError(c, "getPricesHandler", err, errorMessages{})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func createPriceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPriceReport
		if err := bindJSON(c, &input); err != nil {
			respondError(c, "createPriceHandler", err, errorMessages{validation: priceValidationMessage(err)})
			return
		}

		ctx, span := tracer.Start(c.Request.Context(), "CreatePriceReport")
		defer span.End()

		view, err := models.CreatePriceReport(ctx, &input)
		if err != nil {
			span.RecordError(err)
			respondError(c, "createPriceHandler", err, errorMessages{validation: priceValidationMessage(err)})
			return
		}
		span.SetAttributes(attribute.Int("price_report.id", view.ID))
		priceReportsCreated.Inc()

		workflow.PublishPriceReported(ctx, view)
		c.JSON(http.StatusCreated, view)
	}
}

// missing fields keep the fixed message; other violations (price <= 0, unit of another
// item) are reported generically with their details
func priceValidationMessage(err error) string {
	var verr *utils.ValidationError
	if errors.As(err, &verr) {
		for _, v := range verr.Violations {
			if v.Tag == "required" {
				return models.MissingFieldsMessage
			}
		}
	}
	return "Invalid price report"
}

func exportPricesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parsePriceFilter(c)
		if err != nil {
			respondError(c, "exportPricesHandler", err, errorMessages{validation: "Invalid filter"})
			return
		}

		ctx, span := tracer.Start(c.Request.Context(), "ExportPriceReports", filterAttributes(filter))
		defer span.End()

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=price-reports.xlsx")
		rows, err := models.ExportPriceReports(ctx, c.Writer, filter, config.PriceExportMaxRows())
		if err != nil {
			span.RecordError(err)
			if c.Writer.Written() {
				config.LogError(config.GetLogger(), "handlers", "exportPricesHandler", "writing workbook", nil, err)
				return
			}
			c.Writer.Header().Del("Content-Type")
			c.Writer.Header().Del("Content-Disposition")
			respondError(c, "exportPricesHandler", err, errorMessages{})
			return
		}
		span.SetAttributes(attribute.Int("export.rows", rows))
	}
}
