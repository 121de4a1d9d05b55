package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/grit/pkg/repo"
)

func newTagCmd(opts *globalOptions) *cobra.Command {
	var deleteTag string
	var force bool
	var annotate bool
	var message string
	var sign bool
	var signKey string
	var tagger string

	cmd := &cobra.Command{
		Use:   "tag [name] [object]",
		Short: "List, create, or delete tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo()
			if err != nil {
				return err
			}

			if strings.TrimSpace(deleteTag) != "" {
				if len(args) > 0 {
					return fmt.Errorf("tag --delete does not accept positional args")
				}
				return r.DeleteTag(deleteTag)
			}

			if len(args) == 0 {
				tags, err := r.ListTags()
				if err != nil {
					return err
				}
				for _, t := range tags {
					fmt.Fprintln(cmd.OutOrStdout(), strings.TrimPrefix(t.Path, "refs/tags/"))
				}
				return nil
			}

			name := args[0]
			targetName := "HEAD"
			if len(args) == 2 {
				targetName = args[1]
			}
			target, err := r.FindObject(targetName, "", false)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", targetName, err)
			}

			sign = sign || signKey != ""
			if !annotate && !sign && message == "" {
				return r.CreateTag(name, target, force)
			}

			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("annotated tags need a message (-m)")
			}
			who, err := resolveIdentity(tagger, "COMMITTER", time.Now())
			if err != nil {
				return err
			}
			tagOpts := repo.AnnotatedTagOptions{
				Name:    name,
				Target:  target,
				Tagger:  who,
				Message: message,
				Force:   force,
			}
			if sign {
				signer, keyPath, err := newSSHTagSigner(signKey)
				if err != nil {
					return err
				}
				opts.logger.Sugar().Debugf("signing tag %s with %s", name, keyPath)
				tagOpts.Signer = signer
			}

			h, err := r.CreateAnnotatedTag(tagOpts)
			if err != nil {
				return err
			}
			opts.logger.Sugar().Debugf("tag object %s", h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&deleteTag, "delete", "d", "", "delete the named tag")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing tag")
	cmd.Flags().BoolVarP(&annotate, "annotate", "a", false, "create an annotated tag object")
	cmd.Flags().StringVarP(&message, "message", "m", "", "tag message (implies -a)")
	cmd.Flags().BoolVarP(&sign, "sign", "s", false, "sign the tag with an SSH key (implies -a)")
	cmd.Flags().StringVar(&signKey, "sign-key", "", "SSH private key used to sign (default ~/.ssh/id_ed25519, id_ecdsa, id_rsa)")
	cmd.Flags().StringVar(&tagger, "tagger", "", "tagger identity as \"Name <email>\"")
	return cmd
}

func newVerifyTagCmd(opts *globalOptions) *cobra.Command {
	var allowedKey string

	cmd := &cobra.Command{
		Use:   "verify-tag <name>",
		Short: "Check the SSH signature of an annotated tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo()
			if err != nil {
				return err
			}
			allowed, err := loadAllowedKey(allowedKey)
			if err != nil {
				return err
			}
			tag, err := r.VerifyTag(args[0], sshTagVerifier(allowed))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "good signature on tag %s (%s %s)\n", tag.Name(), tag.TargetType(), tag.Object())
			return nil
		},
	}

	cmd.Flags().StringVar(&allowedKey, "key", "", "only accept signatures from this public key file")
	return cmd
}
