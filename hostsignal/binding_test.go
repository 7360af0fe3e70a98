package hostsignal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindLookupUnbind(t *testing.T) {
	const tid = int32(42424242)
	r := &countingRecipient{calls: make(chan struct{}, 1)}

	assert.Nil(t, lookup(tid))
	Bind(tid, r)
	assert.Same(t, Recipient(r), lookup(tid))
	Unbind(tid)
	assert.Nil(t, lookup(tid))
}

func TestMarkInflightIsExclusive(t *testing.T) {
	const tid = int32(13131313)
	assert.True(t, markInflight(tid))
	assert.False(t, markInflight(tid))
	clearInflight(tid)
	assert.True(t, markInflight(tid))
	clearInflight(tid)
}
