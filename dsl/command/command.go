// Package command builds dragonfly commands with subcommands, sender restrictions and permissions.
package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/hikari/dsl/prop"
	"github.com/dm-vev/hikari/dsl/text"
	"github.com/spf13/pflag"
)

const (
	DefaultPermissionMessage  = "&cI'm sorry, but you do not have permission to perform this command."
	DefaultWrongSenderMessage = "&cThis command was not tailored for your type of sender."
)

var (
	// ErrNoName is returned when a command is built without a name.
	ErrNoName = errors.New("command name not set")
	// ErrNilSubcommand is returned by Spec.SubcommandOf for a nil command.
	ErrNilSubcommand = errors.New("nil subcommand")
)

// Permissions decides if a command source holds a permission node.
type Permissions interface {
	HasPermission(src cmd.Source, node string) bool
}

// PermissionsFunc adapts a function to Permissions.
type PermissionsFunc func(src cmd.Source, node string) bool

func (f PermissionsFunc) HasPermission(src cmd.Source, node string) bool { return f(src, node) }

// Authoriser is implemented by sources that check permissions themselves.
type Authoriser interface {
	HasPermission(node string) bool
}

// defaultPermissions lets consoles run everything and asks sources implementing Authoriser.
type defaultPermissions struct{}

func (defaultPermissions) HasPermission(src cmd.Source, node string) bool {
	if a, ok := src.(Authoriser); ok {
		return a.HasPermission(node)
	}
	k := KindOf(src)
	return k.Has(KindConsole) || k.Has(KindRemoteConsole)
}

// Spec configures a command.
type Spec struct {
	Name        *prop.Property[string]
	Description *prop.Property[string]
	Aliases     *prop.Property[[]string]
	// Permission is the node required to run the command. Without one everybody may run it.
	Permission         *prop.Property[string]
	PermissionMessage  *prop.Property[string]
	WrongSenderMessage *prop.Property[string]
	// Parser defines the flags parsed by RunSpec.Parsed.
	Parser *prop.Property[func(fs *pflag.FlagSet)]
	// Permissions checks the permission nodes of senders. Subcommands that do not set their own
	// checker use the one of their parent.
	Permissions *prop.Property[Permissions]

	allow       Kind
	subcommands []*Command
	run         func(r *RunSpec) Signal
	tab         func(t *TabSpec) []string
	register    bool
	err         error
}

func newSpec() *Spec {
	return &Spec{
		Name:               prop.Empty[string]().Named("name"),
		Description:        prop.Of("").Named("description"),
		Aliases:            prop.Of[[]string](nil).Named("aliases"),
		Permission:         prop.Empty[string]().Named("permission"),
		PermissionMessage:  prop.Of(DefaultPermissionMessage).Named("permission_message"),
		WrongSenderMessage: prop.Of(DefaultWrongSenderMessage).Named("wrong_sender_message"),
		Parser:             prop.Empty[func(fs *pflag.FlagSet)]().Named("parser"),
		Permissions:        prop.Of[Permissions](defaultPermissions{}).Named("permissions"),
	}
}

// New builds a command configured by fn.
func New(fn func(s *Spec)) (*Command, error) {
	s := newSpec()
	fn(s)
	return s.build()
}

// Allow selects the kinds of senders allowed to run the command. Commands that allow no kind
// can be run by any sender.
func (s *Spec) Allow(fn func(a *AllowSpec)) {
	fn(&AllowSpec{kinds: &s.allow})
}

// Subcommand builds a subcommand, routed to when the first argument matches its name or an alias.
func (s *Spec) Subcommand(fn func(s *Spec)) error {
	sub, err := New(fn)
	if err != nil {
		err = fmt.Errorf("subcommand: %w", err)
		s.fail(err)
		return err
	}
	s.subcommands = append(s.subcommands, sub)
	return nil
}

// SubcommandOf adds an existing command as a subcommand.
func (s *Spec) SubcommandOf(c *Command) error {
	if c == nil {
		s.fail(ErrNilSubcommand)
		return ErrNilSubcommand
	}
	s.subcommands = append(s.subcommands, c)
	return nil
}

// Run sets the callback run when a permitted sender runs the command.
func (s *Spec) Run(fn func(r *RunSpec) Signal) { s.run = fn }

// Tab sets the callback returning completions for the command.
func (s *Spec) Tab(fn func(t *TabSpec) []string) { s.tab = fn }

// Register registers the command with dragonfly once it is built.
func (s *Spec) Register() { s.register = true }

func (s *Spec) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *Spec) build() (*Command, error) {
	if s.err != nil {
		return nil, s.err
	}
	name, ok := s.Name.Nullable()
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return nil, ErrNoName
	}
	c := &Command{
		name:               name,
		description:        s.Description.MustGet(),
		aliases:            slices.Clone(s.Aliases.MustGet()),
		permissionMessage:  s.PermissionMessage.MustGet(),
		wrongSenderMessage: s.WrongSenderMessage.MustGet(),
		perms:              s.Permissions.MustGet(),
		inheritPerms:       !s.Permissions.IsPresent(),
		allow:              s.allow,
		subcommands:        make(map[string]*Command),
		run:                s.run,
		tab:                s.tab,
	}
	c.permission, c.hasPermission = s.Permission.Nullable()
	c.parser, _ = s.Parser.Nullable()
	if c.perms == nil {
		c.perms = defaultPermissions{}
	}
	for _, sub := range s.subcommands {
		c.bind(sub)
	}
	if s.register {
		cmd.Register(c.Dragonfly())
	}
	return c, nil
}

// inherit sets perms as the checker of c and its subcommands unless they were built with their own.
func (c *Command) inherit(perms Permissions) {
	if !c.inheritPerms {
		return
	}
	c.perms = perms
	for _, sub := range c.subs {
		sub.inherit(perms)
	}
}

// Command is a built command.
type Command struct {
	name               string
	description        string
	aliases            []string
	permission         string
	hasPermission      bool
	permissionMessage  string
	wrongSenderMessage string
	parser             func(fs *pflag.FlagSet)
	perms              Permissions
	inheritPerms       bool
	allow              Kind

	subs        []*Command
	subcommands map[string]*Command

	run func(r *RunSpec) Signal
	tab func(t *TabSpec) []string
}

func (c *Command) bind(sub *Command) {
	sub.inherit(c.perms)
	c.subs = append(c.subs, sub)
	for _, alias := range sub.aliases {
		c.subcommands[strings.ToLower(alias)] = sub
	}
	c.subcommands[strings.ToLower(sub.name)] = sub
}

func (c *Command) Name() string        { return c.name }
func (c *Command) Description() string { return c.description }
func (c *Command) Aliases() []string   { return slices.Clone(c.aliases) }

// Permission returns the node required to run the command.
func (c *Command) Permission() (string, bool) { return c.permission, c.hasPermission }

// Allowed returns the kinds allowed to run the command. Zero means every kind.
func (c *Command) Allowed() Kind { return c.allow }

// Subcommands returns the subcommands in the order they were added.
func (c *Command) Subcommands() []*Command { return slices.Clone(c.subs) }

func (c *Command) subcommand(args []string) (*Command, bool) {
	if len(args) == 0 {
		return nil, false
	}
	sub, ok := c.subcommands[strings.ToLower(args[0])]
	return sub, ok
}

func (c *Command) authorised(src cmd.Source) bool {
	return !c.hasPermission || c.perms.HasPermission(src, c.permission)
}

func (c *Command) allows(src cmd.Source) bool {
	return c.allow == 0 || c.allow&KindOf(src) != 0
}

// Execute runs the command for src. The first argument selects a subcommand when it matches one.
// Otherwise the sender must hold the permission of the command and be of an allowed kind.
func (c *Command) Execute(src cmd.Source, args []string, o *cmd.Output, tx *world.Tx) Signal {
	if sub, ok := c.subcommand(args); ok {
		return sub.Execute(src, args[1:], o, tx)
	}
	if !c.authorised(src) {
		o.Error(text.Fill(c.permissionMessage, "perm", c.permission))
		return Stopped
	}
	if !c.allows(src) {
		o.Error(text.Colour(c.wrongSenderMessage))
		return Stopped
	}
	if c.run == nil {
		return Continue
	}
	return c.run(&RunSpec{Command: c, Source: src, Args: args, Output: o, Tx: tx})
}

// Complete returns completions for args. It returns nil when src may not run the command.
func (c *Command) Complete(src cmd.Source, args []string) []string {
	if sub, ok := c.subcommand(args); ok && len(args) > 1 {
		return sub.Complete(src, args[1:])
	}
	if !c.authorised(src) || !c.allows(src) {
		return nil
	}
	spec := &TabSpec{Command: c, Source: src, Args: args}
	if c.tab != nil {
		return c.tab(spec)
	}
	if len(args) > 1 || len(c.subs) == 0 {
		return nil
	}
	names := make([]string, 0, len(c.subs))
	for _, sub := range c.subs {
		names = append(names, sub.name)
	}
	slices.Sort(names)
	return spec.FilterPrefix(names)
}
