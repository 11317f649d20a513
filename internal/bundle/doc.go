// Package bundle publishes certbot lineages as single-file PEM bundles
// for reverse proxies such as HAProxy.
//
// For every lineage in certbot's live directory the pipeline writes
// <output>/<domain>.pem containing, in order, the full chain, the private
// key and freshly generated DH parameters (against LOGJAM). Bundles are
// rebuilt from scratch on every run.
//
// Until the first real certificate exists the output directory holds a
// self-signed localhost.pem so the proxy can start and serve the HTTP-01
// challenge. Once real bundles sit next to it the placeholder is removed.
//
// After publishing, the optional touch-file gets a new modification time
// so a watcher in another container can reload the proxy.
//
// Runs are serialized across processes with an advisory lock file.
package bundle
