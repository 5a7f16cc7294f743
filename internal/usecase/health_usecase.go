package usecase

import "context"

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

// MailTransport is the part of a mail relay the health check inspects
type MailTransport interface {
	IsConfigured() bool
}

type healthUsecase struct {
	mail       MailTransport
	redisCheck func(ctx context.Context) error
}

// NewHealthUsecase builds the health check. A nil redisCheck reports Redis as disabled.
func NewHealthUsecase(mail MailTransport, redisCheck func(ctx context.Context) error) HealthUsecase {
	return &healthUsecase{mail: mail, redisCheck: redisCheck}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	status := map[string]string{
		"status": "ok",
		"mail":   "configured",
		"redis":  "disabled",
	}

	if u.mail == nil || !u.mail.IsConfigured() {
		status["mail"] = "unconfigured"
		status["status"] = "degraded"
	}

	if u.redisCheck != nil {
		if err := u.redisCheck(ctx); err != nil {
			status["redis"] = "down"
			status["status"] = "degraded"
		} else {
			status["redis"] = "up"
		}
	}

	return status
}
