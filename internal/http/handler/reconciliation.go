package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"payoutrecon/internal/model"
	"payoutrecon/internal/service"
)

func validID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	_, err := uuid.Parse(id)
	return id, err == nil
}

// RunDaily godoc
// @Summary Reconcile one day
// @Description Uploads a payout transactions export and reconciles the orders created on date.
// @Tags reconciliations
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Payout transactions CSV"
// @Param date formData string true "Day to reconcile (YYYY-MM-DD)"
// @Param timezone formData string false "utc, shop or an IANA name"
// @Success 201 {object} model.Run
// @Failure 400 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /reconciliations/daily [post]
func RunDaily(svc service.ReconciliationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		run, err := svc.RunDaily(c.UserContext(), service.DailyRequest{
			Day:        c.FormValue("date"),
			Timezone:   c.FormValue("timezone"),
			PayoutCSV:  f,
			PayoutFile: fh.Filename,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(run)
	}
}

// RunRange godoc
// @Summary Reconcile the whole payout export
// @Tags reconciliations
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Payout transactions CSV"
// @Param timezone formData string false "utc, shop or an IANA name"
// @Param group_by formData string false "order_date or payout_date"
// @Success 201 {object} model.Run
// @Failure 400 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /reconciliations/range [post]
func RunRange(svc service.ReconciliationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		run, err := svc.RunRange(c.UserContext(), service.RangeRequest{
			Timezone:   c.FormValue("timezone"),
			GroupBy:    c.FormValue("group_by", model.GroupByOrderDate),
			PayoutCSV:  f,
			PayoutFile: fh.Filename,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(run)
	}
}

// ListRuns godoc
// @Summary List reconciliation runs
// @Tags reconciliations
// @Produce json
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} service.RunListResult
// @Router /reconciliations [get]
func ListRuns(svc service.ReconciliationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetRun godoc
// @Summary Get a run with its reports
// @Tags reconciliations
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} model.Run
// @Failure 404 {object} errorPayload
// @Router /reconciliations/{id} [get]
func GetRun(svc service.ReconciliationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		run, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(run)
	}
}

// ListDays godoc
// @Summary Daily summaries of a run
// @Tags reconciliations
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {array} model.DailySummary
// @Router /reconciliations/{id}/days [get]
func ListDays(svc service.ReconciliationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		days, err := svc.Days(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": days, "total": len(days)})
	}
}

// GetMismatches godoc
// @Summary Mismatch analysis of a run
// @Tags reconciliations
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} model.MismatchAnalysis
// @Router /reconciliations/{id}/mismatches [get]
func GetMismatches(svc service.ReconciliationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		a, err := svc.Mismatches(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(a)
	}
}

// DownloadReport godoc
// @Summary Redirect to a presigned report URL
// @Tags reconciliations
// @Param id path string true "Run ID"
// @Param kind path string true "orders, summary, transposed, sources, trace or mismatches"
// @Success 302
// @Failure 404 {object} errorPayload
// @Router /reconciliations/{id}/reports/{kind} [get]
func DownloadReport(svc service.ReconciliationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.ReportURL(c.UserContext(), id, c.Params("kind"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Redirect(url, fiber.StatusFound)
	}
}

// DeleteRun godoc
// @Summary Delete a run and its reports
// @Tags reconciliations
// @Param id path string true "Run ID"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /reconciliations/{id} [delete]
func DeleteRun(svc service.ReconciliationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// AnalyzeRefunds godoc
// @Summary Compare refund sources
// @Description Compares the four places Shopify records refunds for orders created between start and end.
// @Tags refunds
// @Produce json
// @Param start query string true "First day (YYYY-MM-DD)"
// @Param end query string true "Last day (YYYY-MM-DD)"
// @Success 200 {object} model.RefundSummary
// @Failure 400 {object} errorPayload
// @Router /refunds/analysis [get]
func AnalyzeRefunds(svc service.ReconciliationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.AnalyzeRefunds(c.UserContext(), c.Query("start"), c.Query("end"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(s)
	}
}
