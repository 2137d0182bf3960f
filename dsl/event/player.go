package event

import (
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

// Chat is published when a player sends a chat message. Message may be changed by handlers.
type Chat struct {
	Cancellation
	Player  *player.Player
	Message *string
}

// Move is published when a player moves or rotates.
type Move struct {
	Cancellation
	Player   *player.Player
	Position mgl64.Vec3
	Rotation cube.Rotation
}

// BlockBreak is published when a player breaks a block. Drops and Experience may be changed.
type BlockBreak struct {
	Cancellation
	Player     *player.Player
	Position   cube.Pos
	Drops      *[]item.Stack
	Experience *int
}

// BlockPlace is published when a player places a block.
type BlockPlace struct {
	Cancellation
	Player   *player.Player
	Position cube.Pos
	Block    world.Block
}

// ItemUse is published when a player uses the item in their hand.
type ItemUse struct {
	Cancellation
	Player *player.Player
}

// Hurt is published when a player is hurt.
type Hurt struct {
	Cancellation
	Player         *player.Player
	Damage         *float64
	Immune         bool
	AttackImmunity *time.Duration
	Source         world.DamageSource
}

// Death is published when a player dies.
type Death struct {
	Player        *player.Player
	Source        world.DamageSource
	KeepInventory *bool
}

// Quit is published when a player leaves the server.
type Quit struct {
	Player *player.Player
}

// CommandExecution is published when a player runs a command.
type CommandExecution struct {
	Cancellation
	Player  *player.Player
	Command cmd.Command
	Args    []string
}

type contextCanceller interface {
	Cancel()
	Cancelled() bool
}

// playerBridge publishes player events on a bus before passing them to the wrapped handler.
type playerBridge struct {
	player.Handler
	bus *Bus
}

// PlayerHandler returns a player.Handler that publishes events on b and then calls base. A nil base
// is replaced by player.NopHandler.
func (b *Bus) PlayerHandler(base player.Handler) player.Handler {
	if base == nil {
		base = player.NopHandler{}
	}
	if bridge, ok := base.(*playerBridge); ok {
		base = bridge.Handler
	}
	return &playerBridge{Handler: base, bus: b}
}

// publish sends ev to the bus and cancels ctx when ev ends up cancelled. It reports whether the
// wrapped handler should still be called.
func (h *playerBridge) publish(ctx contextCanceller, ev Cancellable) bool {
	if ctx.Cancelled() {
		ev.Cancel()
	}
	if h.bus.Publish(ev) {
		ctx.Cancel()
		return false
	}
	return true
}

func (h *playerBridge) HandleChat(ctx *player.Context, message *string) {
	if h.publish(ctx, &Chat{Player: ctx.Val(), Message: message}) {
		h.Handler.HandleChat(ctx, message)
	}
}

func (h *playerBridge) HandleMove(ctx *player.Context, newPos mgl64.Vec3, newRot cube.Rotation) {
	if h.bus.Handlers((*Move)(nil)) == 0 {
		h.Handler.HandleMove(ctx, newPos, newRot)
		return
	}
	if h.publish(ctx, &Move{Player: ctx.Val(), Position: newPos, Rotation: newRot}) {
		h.Handler.HandleMove(ctx, newPos, newRot)
	}
}

func (h *playerBridge) HandleBlockBreak(ctx *player.Context, pos cube.Pos, drops *[]item.Stack, xp *int) {
	if h.publish(ctx, &BlockBreak{Player: ctx.Val(), Position: pos, Drops: drops, Experience: xp}) {
		h.Handler.HandleBlockBreak(ctx, pos, drops, xp)
	}
}

func (h *playerBridge) HandleBlockPlace(ctx *player.Context, pos cube.Pos, b world.Block) {
	if h.publish(ctx, &BlockPlace{Player: ctx.Val(), Position: pos, Block: b}) {
		h.Handler.HandleBlockPlace(ctx, pos, b)
	}
}

func (h *playerBridge) HandleItemUse(ctx *player.Context) {
	if h.publish(ctx, &ItemUse{Player: ctx.Val()}) {
		h.Handler.HandleItemUse(ctx)
	}
}

func (h *playerBridge) HandleHurt(ctx *player.Context, damage *float64, immune bool, attackImmunity *time.Duration, src world.DamageSource) {
	ev := &Hurt{Player: ctx.Val(), Damage: damage, Immune: immune, AttackImmunity: attackImmunity, Source: src}
	if h.publish(ctx, ev) {
		h.Handler.HandleHurt(ctx, damage, immune, attackImmunity, src)
	}
}

func (h *playerBridge) HandleDeath(p *player.Player, src world.DamageSource, keepInv *bool) {
	h.bus.Publish(&Death{Player: p, Source: src, KeepInventory: keepInv})
	h.Handler.HandleDeath(p, src, keepInv)
}

func (h *playerBridge) HandleCommandExecution(ctx *player.Context, command cmd.Command, args []string) {
	if h.publish(ctx, &CommandExecution{Player: ctx.Val(), Command: command, Args: args}) {
		h.Handler.HandleCommandExecution(ctx, command, args)
	}
}

func (h *playerBridge) HandleQuit(p *player.Player) {
	h.bus.Publish(&Quit{Player: p})
	h.Handler.HandleQuit(p)
}
