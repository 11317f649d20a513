// Package certbot wraps the certbot CLI for standalone HTTP-01 issuance
// and renewal, and reads the lineages certbot keeps in its live store.
//
// All ACME work happens inside certbot. Client methods never return
// errors: every run is framed on the console and ends with certbot's exit
// code, and the next scheduled renewal is the only retry.
//
// # Certificate Issuance
//
//	client := certbot.NewClient(runner, cfg.ACMEServer, cfg.Email)
//	client.IssueAll(ctx, []string{"example.com", "www.example.com"})
//
// # Renewal
//
//	client.Renew(ctx, "/usr/local/bin/certbot-runner post-hook")
//
// # Certificate Paths
//
//	/etc/letsencrypt/live/{domain}/fullchain.pem  (certificate chain)
//	/etc/letsencrypt/live/{domain}/privkey.pem    (private key)
//
// # Testing
//
// Build the runner on an executor.MockExecutor and inspect its Calls.
package certbot
