package main

import (
	"context"
	"iter"
)

type countingAnswerer struct {
	calls int
}

func (c *countingAnswerer) AnswerStream(ctx context.Context, question string, knowledge []string) iter.Seq2[string, error] {
	c.calls++
	return func(yield func(string, error) bool) {
		yield("Aye.", nil)
	}
}
