// Package translate rewrites subtitle files in another language through an
// external HTTP endpoint. Requests are chunked under a byte budget, paced
// with a fixed inter-request delay, and backed by a persistent content-keyed
// cache. A failed chunk leaves its cues untranslated; only a file write
// failure fails the job.
package translate
