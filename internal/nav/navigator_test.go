package nav

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigator_InitialLocation(t *testing.T) {
	navigator := NewNavigator(query("view=shop"))
	defer navigator.Close()

	assert.Equal(t, "shop", navigator.Location().Get(ParamView))
}

func TestNavigator_PushNotifiesSubscribers(t *testing.T) {
	navigator := NewNavigator(url.Values{})
	defer navigator.Close()

	var seen []string
	unsubscribe := navigator.Subscribe(func(values url.Values) {
		seen = append(seen, values.Get(ParamView))
	})
	defer unsubscribe()

	navigator.Push(query("view=shop"))
	navigator.Push(query("view=cart"))

	assert.Equal(t, []string{"shop", "cart"}, seen)
}

func TestNavigator_ReplaceKeepsStackDepth(t *testing.T) {
	navigator := NewNavigator(url.Values{})
	defer navigator.Close()

	navigator.Push(query("view=shop"))
	navigator.Replace(query("view=community"))

	assert.Equal(t, "community", navigator.Location().Get(ParamView))
	// Replace swapped the entry, so Back lands on the initial location
	require.True(t, navigator.Back())
	assert.Empty(t, navigator.Location().Get(ParamView))
	assert.False(t, navigator.Back())
}

func TestNavigator_BackForwardDispatchSignal(t *testing.T) {
	navigator := NewNavigator(url.Values{})
	defer navigator.Close()

	navigator.Push(query("view=shop"))
	navigator.Push(query("view=cart"))

	notifications := 0
	unsubscribe := navigator.Subscribe(func(url.Values) { notifications++ })
	defer unsubscribe()

	require.True(t, navigator.Back())
	assert.Equal(t, "shop", navigator.Location().Get(ParamView))

	require.True(t, navigator.Forward())
	assert.Equal(t, "cart", navigator.Location().Get(ParamView))

	assert.False(t, navigator.Forward())
	assert.Equal(t, 2, notifications)
}

func TestNavigator_PushDiscardsForwardHistory(t *testing.T) {
	navigator := NewNavigator(url.Values{})
	defer navigator.Close()

	navigator.Push(query("view=shop"))
	navigator.Push(query("view=cart"))
	require.True(t, navigator.Back())

	navigator.Push(query("view=community"))
	assert.False(t, navigator.Forward())
	assert.Equal(t, "community", navigator.Location().Get(ParamView))
}

func TestNavigator_SelfUnsubscribeDuringNotify(t *testing.T) {
	navigator := NewNavigator(url.Values{})
	defer navigator.Close()

	var calls []string
	var unsubscribeB func()

	unsubA := navigator.Subscribe(func(url.Values) { calls = append(calls, "a") })
	defer unsubA()
	unsubscribeB = navigator.Subscribe(func(url.Values) {
		calls = append(calls, "b")
		unsubscribeB()
	})
	unsubC := navigator.Subscribe(func(url.Values) { calls = append(calls, "c") })
	defer unsubC()

	navigator.Push(query("view=shop"))
	assert.Equal(t, []string{"a", "b", "c"}, calls)

	calls = nil
	navigator.Push(query("view=cart"))
	assert.Equal(t, []string{"a", "c"}, calls)
}

func TestNavigator_CloseTearsDownSubscriptions(t *testing.T) {
	navigator := NewNavigator(url.Values{})

	notifications := 0
	navigator.Subscribe(func(url.Values) { notifications++ })

	navigator.Close()
	navigator.Push(query("view=shop"))

	assert.Equal(t, 0, notifications)
	// Location stays readable after close
	assert.Empty(t, navigator.Location().Get(ParamView))
}

func TestNavigator_LocationReturnsCopy(t *testing.T) {
	navigator := NewNavigator(query("view=shop"))
	defer navigator.Close()

	location := navigator.Location()
	location.Set(ParamView, "cart")

	assert.Equal(t, "shop", navigator.Location().Get(ParamView))
}
