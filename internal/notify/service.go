// internal/notify/service.go

package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/oddoapp/pickme-backend/internal/users"
)

// Service sends best-effort notifications about lifecycle events. Sends
// run in their own goroutine with a fresh context so a slow provider never
// stalls the request that triggered it, and failures only get logged.
type Service struct {
	email        EmailProvider
	sms          SMSProvider
	userRepo     users.Repository
	emailEnabled bool
	smsEnabled   bool
}

func NewService(email EmailProvider, sms SMSProvider, userRepo users.Repository, emailEnabled, smsEnabled bool) *Service {
	return &Service{
		email:        email,
		sms:          sms,
		userRepo:     userRepo,
		emailEnabled: emailEnabled,
		smsEnabled:   smsEnabled,
	}
}

// PickProposed tells the request owner somebody picked them
func (s *Service) PickProposed(ctx context.Context, requesterUserID, pickerUserID, matchID int64) {
	s.send(requesterUserID, "Someone picked you!",
		fmt.Sprintf("You have a new pick waiting for your answer (match #%d). Open the app to approve or decline.", matchID))
}

// MatchAccepted tells the picker their proposal was approved
func (s *Service) MatchAccepted(ctx context.Context, pickerUserID, requesterUserID, matchID int64) {
	s.send(pickerUserID, "Your pick was accepted!",
		fmt.Sprintf("Match #%d was approved. Check the app for your meetup details.", matchID))
}

func (s *Service) send(userID int64, subject, body string) {
	emailOn := s.emailEnabled && s.email != nil
	smsOn := s.smsEnabled && s.sms != nil
	if !emailOn && !smsOn {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			log.Printf("notify: failed to load user %d: %v", userID, err)
			return
		}

		if emailOn {
			err := s.email.SendEmail(ctx, &Email{
				To:      user.Email,
				Subject: subject,
				Body:    body,
			})
			if err != nil {
				log.Printf("notify: failed to email user %d: %v", userID, err)
			}
		}

		// Users without a phone number on file just skip the SMS leg
		if smsOn && user.PhoneNumber != nil {
			err := s.sms.SendSMS(ctx, &SMS{
				To:      *user.PhoneNumber,
				Message: subject + " " + body,
			})
			if err != nil {
				log.Printf("notify: failed to text user %d: %v", userID, err)
			}
		}
	}()
}
