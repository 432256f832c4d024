package cli

import (
	"gitlab.com/tozd/go/errors"

	"github.com/yiblet/clippy/internal/config"
)

// Args represents the top-level command structure
type Args struct {
	Home     *string `arg:"--home,env:CLIPPY_HOME" help:"Directory holding the clippy files (default: user home)"`
	Verbose  bool    `arg:"-v,--verbose" help:"Enable debug logging"`
	LogLevel *string `arg:"--log-level,env:CLIPPY_LOG_LEVEL" help:"Log level: debug, info, warn or error"`

	List    *ListCmd    `arg:"subcommand:list" help:"List history or pinned entries"`
	Get     *GetCmd     `arg:"subcommand:get" help:"Print an entry to stdout or a file"`
	Copy    *CopyCmd    `arg:"subcommand:copy" help:"Put an entry back on the clipboard"`
	Pin     *PinCmd     `arg:"subcommand:pin" help:"Move a history entry to the pins"`
	Unpin   *UnpinCmd   `arg:"subcommand:unpin" help:"Move a pinned entry back to history"`
	Delete  *DeleteCmd  `arg:"subcommand:delete" help:"Delete an entry"`
	Clear   *ClearCmd   `arg:"subcommand:clear" help:"Delete all entries"`
	Cleanup *CleanupCmd `arg:"subcommand:cleanup" help:"Remove expired entries and unreferenced images"`
	Config  *ConfigCmd  `arg:"subcommand:config" help:"Show or change configuration"`
	Pick    *PickCmd    `arg:"subcommand:pick" help:"Browse entries interactively"`
	Daemon  *DaemonCmd  `arg:"subcommand:daemon" help:"Watch the clipboard and record changes"`
}

// ListCmd represents 'clippy list'
type ListCmd struct {
	Pins  bool `arg:"-p,--pins" help:"List pins instead of history"`
	Limit int  `arg:"-n,--limit" help:"Show at most N entries (0 = all)"`
}

// GetCmd represents 'clippy get'
type GetCmd struct {
	Index  int     `arg:"positional,required" help:"Entry index (0 = newest)"`
	Pins   bool    `arg:"-p,--pins" help:"Index into pins instead of history"`
	Output *string `arg:"-o,--output" help:"Write to file instead of stdout"`
}

// CopyCmd represents 'clippy copy'
type CopyCmd struct {
	Index int  `arg:"positional,required" help:"Entry index (0 = newest)"`
	Pins  bool `arg:"-p,--pins" help:"Index into pins instead of history"`
}

// PinCmd represents 'clippy pin'
type PinCmd struct {
	Index int `arg:"positional,required" help:"History index to pin"`
}

// UnpinCmd represents 'clippy unpin'
type UnpinCmd struct {
	Index int `arg:"positional,required" help:"Pin index to move back to history"`
}

// DeleteCmd represents 'clippy delete'
type DeleteCmd struct {
	Index int  `arg:"positional,required" help:"Entry index (0 = newest)"`
	Pins  bool `arg:"-p,--pins" help:"Index into pins instead of history"`
}

// ClearCmd represents 'clippy clear'
type ClearCmd struct {
	Pins  bool `arg:"-p,--pins" help:"Clear pins instead of history"`
	Force bool `arg:"-f,--force" help:"Skip confirmation prompt"`
}

// CleanupCmd represents 'clippy cleanup'
type CleanupCmd struct{}

// ConfigCmd represents 'clippy config'
type ConfigCmd struct {
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Print one setting"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Change one setting"`
	List *ConfigListCmd `arg:"subcommand:list" help:"Print all settings"`
}

// ConfigGetCmd represents 'clippy config get'
type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"Setting name"`
}

// ConfigSetCmd represents 'clippy config set'
type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"Setting name"`
	Value string `arg:"positional,required" help:"Positive integer value"`
}

// ConfigListCmd represents 'clippy config list'
type ConfigListCmd struct{}

// PickCmd represents 'clippy pick'
type PickCmd struct {
	Pins bool `arg:"-p,--pins" help:"Start on the pins tab"`
}

// DaemonCmd represents 'clippy daemon'
type DaemonCmd struct{}

// Description returns the program description
func (Args) Description() string {
	return "clippy - clipboard history with pins"
}

// Version returns the program version
func (Args) Version() string {
	return "clippy 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  clippy daemon                    # Record clipboard changes
  clippy list                      # Show history, newest first
  clippy list --pins               # Show pins
  clippy copy 2                    # Put the third entry back on the clipboard
  clippy pin 0                     # Keep the newest entry
  clippy get 0 -o out.png          # Save an entry to a file
  clippy config set max_pins 100   # Change a setting
  clippy                           # Interactive picker

Files live in the home directory: .clipboard_history, .clipboard_pins,
.clippy.conf and .clippy_data/images/.`
}

// HasCommand reports whether a subcommand was given.
func (args *Args) HasCommand() bool {
	return args.List != nil || args.Get != nil || args.Copy != nil ||
		args.Pin != nil || args.Unpin != nil || args.Delete != nil ||
		args.Clear != nil || args.Cleanup != nil || args.Config != nil ||
		args.Pick != nil || args.Daemon != nil
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	switch {
	case args.List != nil:
		if args.List.Limit < 0 {
			return errors.New("limit must be non-negative")
		}
	case args.Get != nil:
		return validateIndex(args.Get.Index)
	case args.Copy != nil:
		return validateIndex(args.Copy.Index)
	case args.Pin != nil:
		return validateIndex(args.Pin.Index)
	case args.Unpin != nil:
		return validateIndex(args.Unpin.Index)
	case args.Delete != nil:
		return validateIndex(args.Delete.Index)
	case args.Config != nil:
		return args.Config.Validate()
	}
	return nil
}

// Validate validates config command arguments
func (c *ConfigCmd) Validate() error {
	key := ""
	switch {
	case c.Get != nil:
		key = c.Get.Key
	case c.Set != nil:
		key = c.Set.Key
	default:
		return nil
	}
	for _, known := range config.Keys() {
		if key == known {
			return nil
		}
	}
	return errors.Errorf("unknown configuration key: %s", key)
}

func validateIndex(index int) error {
	if index < 0 {
		return errors.New("index must be non-negative")
	}
	return nil
}
