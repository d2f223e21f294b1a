package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ivanpetrenko/authgate/internal/server/models"
)

// Router builds the public route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(RequestID)
	r.Use(Logging(s.logger))
	r.Use(Recover(s.logger))

	r.HandleFunc("/check-username/{username}", s.checkUsername).Methods(http.MethodGet)
	r.HandleFunc("/check-user-ref-token/{id}", s.checkUserRefToken).Methods(http.MethodGet)
	r.HandleFunc("/create-anonymous", s.createAnonymous).Methods(http.MethodPost)
	r.HandleFunc("/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/forgot-password", s.forgotPassword).Methods(http.MethodPost)
	r.HandleFunc("/reset-password", s.resetPassword).Methods(http.MethodPost)
	r.HandleFunc("/forgot-username", s.forgotUsername).Methods(http.MethodPost)
	r.HandleFunc("/send-email-verify-code", s.sendVerifyCode(models.ChannelEmail)).Methods(http.MethodPost)
	r.HandleFunc("/send-phone-verify-code", s.sendVerifyCode(models.ChannelPhone)).Methods(http.MethodPost)
	r.HandleFunc("/verify", s.verify).Methods(http.MethodPost)

	return r
}
