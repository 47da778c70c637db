// Package normalize turns raw clinician form values into a typed optimizer
// request. Numbers may arrive as strings, times in several wall-clock
// layouts; the normalizer coerces them, validates ranges with
// go-playground/validator and reports every offending field at once.
//
// Time normalization is best effort: a value that cannot be parsed is kept
// verbatim and reported as a TimeWarning instead of failing the submission.
package normalize
