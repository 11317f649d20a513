// Package config loads the certbot-runner settings.
//
// Settings are layered, later sources winning:
//
//  1. built-in defaults (New)
//  2. a YAML file named by CERTBOT_CONFIG_FILE
//  3. a .env file in the working directory (never overrides real variables)
//  4. the process environment
//
// Example YAML file:
//
//	email: admin@example.com
//	domains: "example.com www.example.com"
//	output_directory: /certs
//	touch_file: /certs/.changed
//	dhparam_bits: 2048
//	renew_at: "03:00"
//
// Environment variables:
//
//	CERTBOT_EMAIL             contact email (default empty)
//	CERTBOT_DOMAINS           whitespace-separated domains to request
//	CERTBOT_OUTPUT_DIRECTORY  where combined PEM files go (default /certs)
//	CERTBOT_TOUCH_FILE        file touched after every publish
//	CERTBOT_DISABLED          1 skips certificate requests (default 0)
//	CERTBOT_DHPARAM_BITS      DH parameter size (default 2048)
//	CERTBOT_ACME_SERVER       ACME directory URL
//	CERTBOT_LIVE_DIRECTORY    certbot live store (default /etc/letsencrypt/live)
//	CERTBOT_RENEW_AT          daily renewal time, HH:MM local (default 03:00)
//	CERTBOT_POST_HOOK         command certbot runs after renewal
//	CERTBOT_LOCK_FILE         lock guarding the publish step
//	CERTBOT_VERBOSE           enable debug logging
//
// CERTBOT_DISABLED=1 is meant for development hosts without public DNS.
package config
