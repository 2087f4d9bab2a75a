package provider

import (
	"sort"
	"strings"

	"github.com/higagan/quizcracker-backend/internal/domain"
)

// readFlatQuestion reads the primary provider's shape: options as a flat
// text sequence and the answer under "answer". That already matches the
// canonical RawQuestion keys, so the reader only discards shapes the
// normalizer cannot use.
func readFlatQuestion(raw domain.RawQuestion) domain.RawQuestion {
	out := make(domain.RawQuestion, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	if opts, ok := out.OptionTexts(); ok {
		out["options"] = opts
	}
	return out
}

// readKeyedQuestion reads the secondary provider's shape: options may arrive
// as an identifier-to-text mapping and the answer may live under
// "correct_answer". The output carries the canonical keys so normalization
// stays schema-agnostic.
func readKeyedQuestion(raw domain.RawQuestion) domain.RawQuestion {
	out := make(domain.RawQuestion, len(raw))
	for k, v := range raw {
		out[k] = v
	}

	if _, ok := out["answer"]; !ok {
		if v, ok := out["correct_answer"]; ok {
			out["answer"] = v
			delete(out, "correct_answer")
		}
	}

	if m, ok := out["options"].(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		// Keyed options come as {"A": ..., "B": ...}; key order is the
		// display order.
		sort.Slice(keys, func(i, j int) bool {
			return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
		})
		opts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s, ok := m[k].(string); ok {
				opts = append(opts, s)
			}
		}
		out["options"] = opts
	} else if opts, ok := out.OptionTexts(); ok {
		out["options"] = opts
	}

	return out
}
