package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/comandaclub/comanda/internal/cart"
)

func TestBillerRequest(t *testing.T) {
	cartStore := newTestCart("4")
	cartStore.Add(cart.CartItem{ID: 1, Name: "Sarmale", Price: 8, Quantity: 1})
	client := &MockClient{}
	b := NewBiller(client, cartStore, 20*time.Millisecond, nil)

	b.Request()

	if cartStore.State().IsTableActive {
		t.Error("requesting the bill should deactivate the table immediately")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := b.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if got := client.closedTables(); len(got) != 1 || got[0] != "4" {
		t.Errorf("Close called with %v, want [4]", got)
	}

	state := cartStore.State()
	if len(state.Items) != 0 || len(state.OrderHistory) != 0 || len(state.TableOrders) != 0 {
		t.Errorf("state after reset = %+v, want empty aggregate", state)
	}
	if !state.IsTableActive {
		t.Error("the table should reactivate for the next guests")
	}
	if state.TableID != "4" || state.UserID == "" {
		t.Errorf("identity = (%q, %q), want preserved through the reset", state.TableID, state.UserID)
	}
}

func TestBillerCloseFailureStillResets(t *testing.T) {
	cartStore := newTestCart("4")
	cartStore.Add(cart.CartItem{ID: 1, Name: "Sarmale", Price: 8, Quantity: 1})
	client := &MockClient{
		CloseFunc: func(context.Context, string) error {
			return errors.New("backend down")
		},
	}
	b := NewBiller(client, cartStore, 20*time.Millisecond, nil)

	b.Request()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := b.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	state := cartStore.State()
	if len(state.Items) != 0 || !state.IsTableActive {
		t.Error("the local reset should proceed even when the close fails")
	}
}

func TestBillerCancel(t *testing.T) {
	cartStore := newTestCart("4")
	client := &MockClient{}
	b := NewBiller(client, cartStore, 20*time.Millisecond, nil)

	b.Request()
	b.Cancel()

	time.Sleep(60 * time.Millisecond)

	if got := client.closedTables(); len(got) != 0 {
		t.Errorf("Close called with %v, want none after Cancel()", got)
	}
	if cartStore.State().IsTableActive {
		t.Error("Cancel() stops the reset but does not reactivate the table")
	}
}

func TestBillerWait(t *testing.T) {
	t.Run("returnsImmediatelyWithoutRequest", func(t *testing.T) {
		b := NewBiller(&MockClient{}, newTestCart("4"), time.Hour, nil)
		if err := b.Wait(context.Background()); err != nil {
			t.Errorf("Wait() error = %v, want nil", err)
		}
	})

	t.Run("honoursContextCancellation", func(t *testing.T) {
		b := NewBiller(&MockClient{}, newTestCart("4"), time.Hour, nil)
		b.Request()
		defer b.Cancel()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		if err := b.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Wait() error = %v, want deadline exceeded", err)
		}
	})
}
