package certbot

import (
	"context"

	"github.com/ksyq12/certbot-runner/internal/executor"
	"github.com/ksyq12/certbot-runner/internal/logger"
)

// Binary is the certbot executable name
const Binary = "certbot"

// Client drives the certbot CLI
type Client struct {
	runner *executor.Runner
	server string
	email  string
	log    *logger.Logger
}

// NewClient creates a Client that requests certificates from the ACME
// directory at server on behalf of email. email may be empty.
func NewClient(runner *executor.Runner, server, email string) *Client {
	return &Client{
		runner: runner,
		server: server,
		email:  email,
		log:    logger.Named("certbot"),
	}
}

// IsInstalled checks if certbot is on PATH
func (c *Client) IsInstalled() bool {
	_, err := c.runner.Executor().LookPath(Binary)
	return err == nil
}

// IssueArgs returns the certonly arguments for a standalone HTTP-01
// request. --expand lets an existing lineage grow to include domain.
func (c *Client) IssueArgs(domain string) []string {
	return []string{
		"certonly",
		"--standalone",
		"--agree-tos",
		"--noninteractive",
		"--text",
		"--server", c.server,
		"--expand",
		"--preferred-challenges", "http-01",
		"--email", c.email,
		"-d", domain,
	}
}

// Issue requests a certificate for a single domain
func (c *Client) Issue(ctx context.Context, domain string) {
	c.runner.Run(ctx, "Getting certificate for "+domain, Binary, c.IssueArgs(domain)...)
}

// IssueAll requests one certificate per domain, in order. It stops early
// only when ctx is cancelled.
func (c *Client) IssueAll(ctx context.Context, domains []string) {
	for _, domain := range domains {
		if ctx.Err() != nil {
			c.log.Warn("Certificate requests interrupted before %s", domain)
			return
		}
		c.Issue(ctx, domain)
	}
}

// Renew renews every due certificate and has certbot run postHook afterwards
func (c *Client) Renew(ctx context.Context, postHook string) {
	args := []string{"renew"}
	if postHook != "" {
		args = append(args, "--post-hook", postHook)
	}
	c.runner.Run(ctx, "Renewing certificates", Binary, args...)
}
