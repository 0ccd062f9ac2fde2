package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/logger"
)

// SESAPI is the subset of the SES v2 client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends raw MIME through AWS SES v2.
type SESSender struct {
	client     SESAPI
	fromDomain string
}

// NewSESSender wraps an SES client. fromDomain completes sender usernames
// that are not e-mail addresses.
func NewSESSender(client SESAPI, fromDomain string) *SESSender {
	return &SESSender{client: client, fromDomain: fromDomain}
}

// NewSESClient builds an SES v2 client with static credentials when given,
// otherwise the default AWS credential chain.
func NewSESClient(ctx context.Context, accessKey, secretKey, region string) (*sesv2.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return sesv2.NewFromConfig(cfg), nil
}

// Provider implements Sender.
func (s *SESSender) Provider() string { return "ses" }

// Send implements Sender.
func (s *SESSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	out := *msg
	if !strings.Contains(out.From, "@") && s.fromDomain != "" {
		out.From = out.From + "@" + s.fromDomain
	}
	raw, err := Raw(&out, false)
	if err != nil {
		return nil, err
	}

	res, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(out.From),
		Destination: &types.Destination{
			ToAddresses:  out.To,
			CcAddresses:  out.Cc,
			BccAddresses: out.Bcc,
		},
		Content: &types.EmailContent{Raw: &types.RawMessage{Data: raw}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ses send: %v", domain.ErrMailAPI, err)
	}
	id := aws.ToString(res.MessageId)
	logger.Info("ses: sent", "id", id, "to", out.To)
	return &Result{MessageID: id, Provider: s.Provider()}, nil
}
