// Package llm implements the parameter predictor on top of language-model
// provider APIs. The model bridges naming differences between warehouse
// records and the partner catalogue by proposing candidate search terms for
// each stock item. Model output is treated as untrusted: anything that does
// not parse degrades to an empty prediction rather than failing the run.
package llm
