// Package configs provides files embedded at build time so they ship with
// every binary: the annotated config template written by `policyqa init`
// and the built-in evaluation question set.
package configs

import _ "embed"

// ConfigTemplate is the annotated configuration template written by
// `policyqa init` as policyqa.yaml.
//
//go:embed policyqa.example.yaml
var ConfigTemplate string

// EvalQuestions is the built-in evaluation question set used by
// `policyqa eval` when no question file is given.
//
//go:embed eval-questions.yaml
var EvalQuestions string
