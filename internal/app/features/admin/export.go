// internal/app/features/admin/export.go
package admin

import (
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/posthub/internal/app/features/errors"
	"github.com/dalemusser/posthub/internal/app/system/timeouts"
	"github.com/dalemusser/posthub/internal/app/system/xlsxexport"
	"github.com/dalemusser/posthub/internal/domain/models"
	"go.uber.org/zap"
)

// exportTime is the timestamp format used in spreadsheets.
const exportTime = time.RFC3339

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// UsersSheet lays out one row per user.
func UsersSheet(users []models.User) xlsxexport.Sheet {
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, []any{u.Name, u.Email, u.Role, u.CreatedAt.UTC().Format(exportTime)})
	}
	return xlsxexport.Sheet{
		Name: "Users",
		Columns: []xlsxexport.Column{
			{Header: "Name", Width: 30},
			{Header: "Email", Width: 30},
			{Header: "Role", Width: 15},
			{Header: "CreatedAt", Width: 30},
		},
		Rows:   rows,
		Stripe: xlsxexport.StripeRows,
	}
}

// UserSheet lays out every profile attribute of u in a single row.
// Empty values read "N/A".
func UserSheet(u models.User) xlsxexport.Sheet {
	return xlsxexport.Sheet{
		Name: "User",
		Columns: []xlsxexport.Column{
			{Header: "Name", Width: 30},
			{Header: "Email", Width: 30},
			{Header: "Role", Width: 15},
			{Header: "Language", Width: 20},
			{Header: "PhoneNumber", Width: 30},
			{Header: "Address", Width: 40},
			{Header: "State", Width: 25},
			{Header: "Country", Width: 25},
			{Header: "ZipCode", Width: 25},
			{Header: "Currency", Width: 15},
			{Header: "Organization", Width: 30},
			{Header: "TimeZone", Width: 35},
			{Header: "CreatedAt", Width: 30},
		},
		Rows: [][]any{{
			orNA(u.Name),
			orNA(u.Email),
			orNA(u.Role),
			orNA(strings.Join(u.Language, ", ")),
			orNA(u.PhoneNumber),
			orNA(u.Address),
			orNA(u.State),
			orNA(u.Country),
			orNA(u.ZipCode),
			orNA(u.Currency),
			orNA(u.Organization),
			orNA(u.TimeZone),
			u.CreatedAt.UTC().Format(exportTime),
		}},
		Stripe: xlsxexport.StripeColumns,
	}
}

// ServeExportUsers streams every user, deleted ones included, as users.xlsx.
func (h *Handler) ServeExportUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "export users")
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "export users", uierrors.Store(err))
		return
	}
	if len(users) == 0 {
		h.ErrLog.Respond(w, r, "export users", uierrors.NotFound(msgNoUsers))
		return
	}
	if err := xlsxexport.Serve(w, "users.xlsx", UsersSheet(users)); err != nil {
		h.Log.Error("write users.xlsx", zap.Error(err))
	}
}

// ServeExportUser streams one user's profile as user.xlsx.
func (h *Handler) ServeExportUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "export user", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "export user")
	defer cancel()

	u, err := h.loadUser(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "export user", err)
		return
	}
	if err := xlsxexport.Serve(w, "user.xlsx", UserSheet(*u)); err != nil {
		h.Log.Error("write user.xlsx", zap.Error(err))
	}
}
