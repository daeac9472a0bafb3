package cart

import (
	"reflect"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want func(t *testing.T, state State)
	}{
		{
			name: "notJSON",
			raw:  "{garbage",
			want: func(t *testing.T, state State) {
				if !reflect.DeepEqual(state, DefaultState()) {
					t.Errorf("state = %+v, want default", state)
				}
			},
		},
		{
			name: "notAnObject",
			raw:  `"hello"`,
			want: func(t *testing.T, state State) {
				if !reflect.DeepEqual(state, DefaultState()) {
					t.Errorf("state = %+v, want default", state)
				}
			},
		},
		{
			name: "itemsNotAnArray",
			raw:  `{"items": "oops", "total": 12}`,
			want: func(t *testing.T, state State) {
				if len(state.Items) != 0 {
					t.Errorf("items = %+v, want empty", state.Items)
				}
				if state.Total != 12 {
					t.Errorf("total = %v, want 12", state.Total)
				}
			},
		},
		{
			name: "wellFormedState",
			raw: `{
				"items": [{"id": 1, "name": "Cola", "price": 8, "quantity": 2}],
				"total": 16,
				"orderHistory": [{"items": [], "timestamp": 1700000000000, "total": 5}],
				"tableOrders": [],
				"isOrderConfirmed": true,
				"isTableActive": false,
				"tableId": "7",
				"userId": "user_abc"
			}`,
			want: func(t *testing.T, state State) {
				if len(state.Items) != 1 || state.Items[0].Name != "Cola" {
					t.Errorf("items = %+v", state.Items)
				}
				if state.Total != 16 {
					t.Errorf("total = %v, want 16", state.Total)
				}
				if len(state.OrderHistory) != 1 || state.OrderHistory[0].Total != 5 {
					t.Errorf("orderHistory = %+v", state.OrderHistory)
				}
				if !state.IsOrderConfirmed {
					t.Error("isOrderConfirmed should be true")
				}
				if state.IsTableActive {
					t.Error("isTableActive should be false")
				}
				if state.TableID != "7" || state.UserID != "user_abc" {
					t.Errorf("identity = (%q, %q)", state.TableID, state.UserID)
				}
			},
		},
		{
			name: "tableActiveDefaultsToTrueWhenMissing",
			raw:  `{"items": []}`,
			want: func(t *testing.T, state State) {
				if !state.IsTableActive {
					t.Error("isTableActive should default to true")
				}
			},
		},
		{
			name: "mistypedIdentityFieldsDropToEmpty",
			raw:  `{"tableId": 7, "userId": {"x": 1}}`,
			want: func(t *testing.T, state State) {
				if state.TableID != "" || state.UserID != "" {
					t.Errorf("identity = (%q, %q), want empty", state.TableID, state.UserID)
				}
			},
		},
		{
			name: "orderWithMissingTimestampGetsOne",
			raw:  `{"orderHistory": [{"items": [{"id": 1}], "total": 3}]}`,
			want: func(t *testing.T, state State) {
				if len(state.OrderHistory) != 1 {
					t.Fatalf("orderHistory = %+v, want one entry", state.OrderHistory)
				}
				if state.OrderHistory[0].Timestamp == 0 {
					t.Error("timestamp should be substituted")
				}
			},
		},
		{
			name: "historyNotAnArrayDropsToEmpty",
			raw:  `{"orderHistory": 42}`,
			want: func(t *testing.T, state State) {
				if len(state.OrderHistory) != 0 {
					t.Errorf("orderHistory = %+v, want empty", state.OrderHistory)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, Sanitize([]byte(tt.raw)))
		})
	}
}
