// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

package models

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestSnapshot_TenantIDs(t *testing.T) {
	t.Parallel()

	snap := &Snapshot{
		Tenants: []Tenant{{ID: "a"}, {ID: "b"}, {ID: "a"}},
	}

	ids := snap.TenantIDs()
	if len(ids) != 2 {
		t.Fatalf("Expected 2 unique ids, got %d", len(ids))
	}
	for _, id := range []string{"a", "b"} {
		if _, ok := ids[id]; !ok {
			t.Errorf("Missing id %q", id)
		}
	}
}

func TestTenant_PasswordNeverMarshals(t *testing.T) {
	t.Parallel()

	tenant := Tenant{
		ID:              "t1",
		Name:            "Band",
		ContactEmail:    "band@example.com",
		ContactPassword: "super-secret",
	}

	data, err := json.Marshal(tenant)
	if err != nil {
		t.Fatalf("marshal tenant: %v", err)
	}
	if strings.Contains(string(data), "super-secret") {
		t.Errorf("Contact password serialized: %s", data)
	}
}
