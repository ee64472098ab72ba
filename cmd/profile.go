package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage tracking profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles with their colors, marking the active one",
	Args:  cobra.NoArgs,
	RunE:  runProfileList,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a custom profile and switch to it",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileAdd,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a custom profile and its log file",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileDelete,
}

var profileSwitchCmd = &cobra.Command{
	Use:   "switch <name>",
	Short: "Make a profile the active one",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileSwitch,
}

var profileColorCmd = &cobra.Command{
	Use:   "color <name> <hex>",
	Short: "Set a profile's display color, e.g. '#38bdf8'",
	Args:  cobra.ExactArgs(2),
	RunE:  runProfileColor,
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(profileSwitchCmd)
	profileCmd.AddCommand(profileColorCmd)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	active := eng.ActiveProfile()
	for _, label := range eng.Profiles() {
		marker := " "
		if label == active {
			marker = "*"
		}
		kind := "custom"
		if eng.IsBuiltinProfile(label) {
			kind = "built-in"
		}
		fmt.Printf("%s %-22s %s  %s\n", marker, label, eng.ProfileColor(label), kind)
	}
	return nil
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.AddProfile(args[0]); err != nil {
		return err
	}
	fmt.Printf("Created and switched to %q\n", eng.ActiveProfile())
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.DeleteProfile(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %q (active profile is now %q)\n", args[0], eng.ActiveProfile())
	return nil
}

func runProfileSwitch(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.SwitchProfile(args[0]); err != nil {
		return err
	}
	fmt.Printf("Active profile: %q\n", eng.ActiveProfile())
	return nil
}

func runProfileColor(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.SetProfileColor(args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("%s is now %s\n", args[0], eng.ProfileColor(args[0]))
	return nil
}
