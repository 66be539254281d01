// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Host  string `validate:"required,max=16"`
	Limit int    `validate:"min=1,max=100"`
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	if err := ValidateStruct(&sampleRequest{Host: "shop.example", Limit: 10}); err != nil {
		t.Fatalf("Expected valid struct, got: %v", err)
	}
}

func TestValidateStruct_CollectsAllFailures(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&sampleRequest{Host: "", Limit: 0})
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if len(err.Fields) != 2 {
		t.Fatalf("Expected 2 field errors, got %d: %v", len(err.Fields), err)
	}
	if !strings.Contains(err.Error(), "Host is required") {
		t.Errorf("Expected required message for Host, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "Limit must be at least 1") {
		t.Errorf("Expected min message for Limit, got %q", err.Error())
	}
}

func TestValidateStruct_MaxLength(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&sampleRequest{Host: strings.Repeat("a", 17), Limit: 1})
	if err == nil {
		t.Fatal("Expected validation error for over-long host")
	}
	if err.Fields[0].Tag != "max" {
		t.Errorf("Expected max tag, got %q", err.Fields[0].Tag)
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("Expected the same validator instance on repeated calls")
	}
}
