package api

import (
	"net/http"

	"github.com/platinummonkey/chatterbox/pkg/auth"
	"github.com/platinummonkey/chatterbox/pkg/httputil"
	"github.com/platinummonkey/chatterbox/pkg/storage/postgres"
)

const invalidCredentials = "invalid email or password"

// signup handles POST /api/signup
func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var input postgres.SignupInput
	if !httputil.ParseJSONOrError(w, r, &input) {
		return
	}

	user, err := s.store.CreateUser(r.Context(), input)
	if err != nil {
		s.audit.LogFromRequest(r, auth.AuditEvent{
			Action: auth.ActionSignup,
			Status: auth.StatusFailure,
			Email:  input.Email,
			Err:    err,
		})
		s.writeError(w, r, err)
		return
	}

	token, err := s.signer.Issue(user.Identity())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.audit.LogFromRequest(r, auth.AuditEvent{
		Action: auth.ActionSignup,
		Status: auth.StatusSuccess,
		UserID: user.ID,
		Email:  user.Email,
	})
	httputil.WriteCreated(w, AuthOutput{Token: token})
}

// signin handles POST /api/signin
func (s *Server) signin(w http.ResponseWriter, r *http.Request) {
	var input SigninInput
	if !httputil.ParseJSONOrError(w, r, &input) {
		return
	}

	identity, err := s.store.VerifyCredentials(r.Context(), input.Email, input.Password)
	if err != nil {
		s.countSignin("error")
		s.writeError(w, r, err)
		return
	}
	if identity == nil {
		s.countSignin("failure")
		s.audit.LogFromRequest(r, auth.AuditEvent{
			Action: auth.ActionSignin,
			Status: auth.StatusFailure,
			Email:  input.Email,
		})
		httputil.WriteForbidden(w, invalidCredentials)
		return
	}

	token, err := s.signer.Issue(*identity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.countSignin("success")
	s.audit.LogFromRequest(r, auth.AuditEvent{
		Action: auth.ActionSignin,
		Status: auth.StatusSuccess,
		UserID: identity.ID,
		Email:  identity.Email,
	})
	httputil.WriteSuccess(w, AuthOutput{Token: token})
}

func (s *Server) countSignin(result string) {
	if s.signins != nil {
		s.signins.WithLabelValues(result).Inc()
	}
}
