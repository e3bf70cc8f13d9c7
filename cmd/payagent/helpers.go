package main

import (
	"path/filepath"
	"strings"

	"github.com/payagent/payagent/internal/agent"
	"github.com/payagent/payagent/internal/dispatch"
	"github.com/payagent/payagent/internal/vision"
)

type dispatchResult = dispatch.ExecutionResult

func failureResult(message string) dispatchResult {
	return dispatch.Failure(dispatch.ActionError, message)
}

func imageMode(mode string) vision.Mode {
	switch strings.ToLower(mode) {
	case "invoice":
		return vision.ModeInvoice
	case "receipt":
		return vision.ModeReceipt
	case "delivery-proof", "delivery":
		return vision.ModeDeliveryProof
	default:
		return vision.ModeGeneric
	}
}

func imageOptions(hint string) agent.ImageOptions {
	return agent.ImageOptions{Hint: hint}
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
