package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Mailer sends user-facing portal mail.
type Mailer interface {
	SendInvitation(ctx context.Context, to, acceptURL string) error
}

// SESClient is the subset of the SES v2 API the mailer needs.
type SESClient interface {
	SendEmail(ctx context.Context, input *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends mail through AWS SES.
type SESMailer struct {
	Client SESClient
	Source string
}

func (m *SESMailer) SendInvitation(ctx context.Context, to, acceptURL string) error {
	subject := "You have been invited to the stock analysis portal"
	body := fmt.Sprintf(
		"You have been invited to create an account on the stock analysis portal.\n\n"+
			"Follow this link to accept the invitation and choose your credentials:\n\n%s\n\n"+
			"The invitation expires, so accept it promptly. If you were not expecting "+
			"this email you can ignore it.\n", acceptURL)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.Source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	}

	if _, err := m.Client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	return nil
}

// NopMailer drops all mail. Used in development when SES is not configured.
type NopMailer struct{}

func (NopMailer) SendInvitation(ctx context.Context, to, acceptURL string) error {
	return nil
}
