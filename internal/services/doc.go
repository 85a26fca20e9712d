// Package services defines the shared error taxonomy used to classify
// failures raised by external tools and adapters, plus context helpers for
// threading job identity through logging.
package services
