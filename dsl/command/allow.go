package command

import (
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
)

// Kind is a set of command sender kinds.
type Kind uint8

const (
	KindPlayer Kind = 1 << iota
	KindConsole
	KindBlock
	KindProxied
	KindRemoteConsole

	KindAny = KindPlayer | KindConsole | KindBlock | KindProxied | KindRemoteConsole
)

// Has reports whether every kind in other is part of k. The empty set is never had.
func (k Kind) Has(other Kind) bool { return other != 0 && k&other == other }

func (k Kind) String() string {
	if k == 0 {
		return "none"
	}
	var names []string
	for _, c := range []struct {
		kind Kind
		name string
	}{
		{KindPlayer, "player"},
		{KindConsole, "console"},
		{KindBlock, "block"},
		{KindProxied, "proxied"},
		{KindRemoteConsole, "remote_console"},
	} {
		if k&c.kind != 0 {
			names = append(names, c.name)
		}
	}
	return strings.Join(names, "|")
}

// Kinded is implemented by command sources that know their kind. Sources that don't implement it
// are players if they are a *player.Player and of no kind otherwise.
type Kinded interface {
	SenderKind() Kind
}

// KindOf returns the kind of src.
func KindOf(src cmd.Source) Kind {
	switch s := src.(type) {
	case Kinded:
		return s.SenderKind()
	case *player.Player:
		return KindPlayer
	}
	return 0
}

// AllowSpec selects the sender kinds allowed to run a command.
type AllowSpec struct {
	kinds *Kind
}

// KindOption is returned after allowing a kind so that another one can be chained with And.
type KindOption struct {
	s *AllowSpec
}

// And chains another allowed kind. Both kinds are allowed already; And only reads naturally.
func (o KindOption) And(other KindOption) KindOption { return other }

func (s *AllowSpec) add(k Kind) KindOption {
	*s.kinds |= k
	return KindOption{s: s}
}

// Players allows players to run the command.
func (s *AllowSpec) Players() KindOption { return s.add(KindPlayer) }

// Console allows the server console to run the command.
func (s *AllowSpec) Console() KindOption { return s.add(KindConsole) }

// Blocks allows command blocks to run the command.
func (s *AllowSpec) Blocks() KindOption { return s.add(KindBlock) }

// Proxied allows senders running the command on behalf of another, such as /execute.
func (s *AllowSpec) Proxied() KindOption { return s.add(KindProxied) }

// RemoteConsole allows remote console connections to run the command.
func (s *AllowSpec) RemoteConsole() KindOption { return s.add(KindRemoteConsole) }

// Any allows every kind of sender.
func (s *AllowSpec) Any() { *s.kinds = KindAny }
