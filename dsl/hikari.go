package dsl

import (
	"strconv"
	"strings"

	"github.com/dm-vev/hikari/dsl/command"
	"github.com/dm-vev/hikari/dsl/i18n"
)

// LocalePermission is required to run /hikari locale.
const LocalePermission = "hikari-library.locale"

// buildCommand builds /hikari. Start registers it with dragonfly.
func (l *Library) buildCommand() (*command.Command, error) {
	return command.New(func(s *command.Spec) {
		s.Name.Set("hikari")
		s.Aliases.Set([]string{"hikarilibrary"})
		s.Description.Set("Shows information about the Hikari Library.")
		s.Permissions.Set(l.perms)
		s.Run(func(r *command.RunSpec) command.Signal {
			r.Fail("&cUsage: /hikari <locale|plugins|version>")
			return r.Stop()
		})
		_ = s.Subcommand(l.localeCommand)
		_ = s.Subcommand(l.pluginsCommand)
		_ = s.Subcommand(l.versionCommand)
	})
}

// sourceLocale returns the locale of the player running r, or the default locale for other senders.
func (l *Library) sourceLocale(r *command.RunSpec) string {
	p, _ := r.Player()
	return l.Locale(p)
}

func (l *Library) localeCommand(s *command.Spec) {
	s.Name.Set("locale")
	s.Description.Set("Shows or changes your locale.")
	s.Permission.Set(LocalePermission)
	s.WrongSenderMessage.Set(l.tr.T(i18n.LocaleString(l.conf.Locale), "command.console_only"))
	s.Allow(func(a *command.AllowSpec) { a.Players() })
	s.Run(func(r *command.RunSpec) command.Signal {
		p, ok := r.Player()
		if !ok {
			return r.Stop()
		}
		current := l.Locale(p)
		if len(r.Args) == 0 {
			r.Send(l.tr.T(current, "locale.current", "locale", current))
			return command.Continue
		}
		tag, err := i18n.ParseLocale(r.Args[0])
		if err != nil || !l.tr.Has(r.Args[0]) {
			r.Fail(l.tr.T(current, "locale.unknown", "locale", r.Args[0], "available", strings.Join(l.locales(), ", ")))
			return r.Stop()
		}
		locale := i18n.LocaleString(tag)
		if err := l.users.SetLocale(p.UUID(), locale); err != nil {
			l.log.Error("Failed to store locale.", "player", p.Name(), "error", err)
			return r.Stop()
		}
		r.Send(l.tr.T(locale, "locale.set", "locale", locale))
		return command.Continue
	})
	s.Tab(func(t *command.TabSpec) []string {
		if len(t.Args) > 1 {
			return nil
		}
		return t.FilterPrefix(l.locales())
	})
}

func (l *Library) locales() []string {
	tags := l.tr.Languages()
	locales := make([]string, len(tags))
	for i, tag := range tags {
		locales[i] = i18n.LocaleString(tag)
	}
	return locales
}

func (l *Library) pluginsCommand(s *command.Spec) {
	s.Name.Set("plugins")
	s.Aliases.Set([]string{"pl"})
	s.Description.Set("Lists the enabled plugins.")
	s.Run(func(r *command.RunSpec) command.Signal {
		locale := l.sourceLocale(r)
		infos := l.plugins.Infos()
		if len(infos) == 0 {
			r.Send(l.tr.T(locale, "plugins.none"))
			return command.Continue
		}
		names := make([]string, len(infos))
		for i, info := range infos {
			names[i] = "&a" + info.Name + "&7"
			if info.Version != "" {
				names[i] += " " + info.Version
			}
		}
		r.Send(l.tr.T(locale, "plugins.header", "count", strconv.Itoa(len(infos)), "plugins", strings.Join(names, ", ")))
		return command.Continue
	})
}

func (l *Library) versionCommand(s *command.Spec) {
	s.Name.Set("version")
	s.Aliases.Set([]string{"ver"})
	s.Description.Set("Shows the version of the library.")
	s.Run(func(r *command.RunSpec) command.Signal {
		r.Send(l.tr.T(l.sourceLocale(r), "version.message", "version", Version))
		return command.Continue
	})
}
