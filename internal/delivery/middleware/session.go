package middleware

import (
	"database/sql"
	"net/http"

	"advert-service/pkg/database"
	"advert-service/pkg/logger"
	"advert-service/pkg/utils"
)

// Session opens a database session for every request and closes it once the
// handler returns or panics. Handlers reach it through database.SessionFromContext.
func Session(db *sql.DB, loggers *logger.Loggers) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := database.Acquire(r.Context(), db)
			if err != nil {
				loggers.ErrorLogger.Error("failed to acquire database session", utils.Err(err))
				utils.RespondWithErrorJSON(w, http.StatusInternalServerError, "internal server error")
				return
			}
			defer func() {
				if err := session.Close(); err != nil {
					loggers.ErrorLogger.Error("failed to release database session", utils.Err(err))
				}
			}()

			next.ServeHTTP(w, r.WithContext(database.WithSession(r.Context(), session)))
		})
	}
}
