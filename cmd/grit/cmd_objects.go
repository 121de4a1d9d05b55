package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/grit/pkg/object"
)

func newCatFileCmd(opts *globalOptions) *cobra.Command {
	var showType bool

	cmd := &cobra.Command{
		Use:   "cat-file (<type> | -t) <object>",
		Short: "Print the content or type of an object",
		Args: func(cmd *cobra.Command, args []string) error {
			if showType {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo()
			if err != nil {
				return err
			}

			if showType {
				h, err := r.FindObject(args[0], "", false)
				if err != nil {
					return err
				}
				obj, err := r.Store.Read(h)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), obj.Type())
				return nil
			}

			objType, err := object.ParseObjectType(args[0])
			if err != nil {
				return err
			}
			h, err := r.FindObject(args[1], objType, true)
			if err != nil {
				return err
			}
			obj, err := r.Store.Read(h)
			if err != nil {
				return err
			}
			body, err := object.MarshalBody(obj)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type instead of its content")
	return cmd
}

func newHashObjectCmd(opts *globalOptions) *cobra.Command {
	var write bool
	var typeName string

	cmd := &cobra.Command{
		Use:   "hash-object [-w] [-t <type>] <file>",
		Short: "Compute an object id and optionally store the object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objType, err := object.ParseObjectType(typeName)
			if err != nil {
				return err
			}

			var h object.Hash
			if write {
				r, err := opts.openRepo()
				if err != nil {
					return err
				}
				h, err = r.HashFile(args[0], objType, true)
				if err != nil {
					return err
				}
			} else {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				obj, err := object.Parse(objType, data)
				if err != nil {
					return fmt.Errorf("hash-object %s: %w", args[0], err)
				}
				h, err = object.ObjectHash(obj)
				if err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object into the object store")
	cmd.Flags().StringVarP(&typeName, "type", "t", string(object.TypeBlob), "object type: blob, tree, commit or tag")
	return cmd
}

func newRevParseCmd(opts *globalOptions) *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "rev-parse <name>",
		Short: "Resolve a name to an object id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo()
			if err != nil {
				return err
			}
			var want object.ObjectType
			if typeName != "" {
				if want, err = object.ParseObjectType(typeName); err != nil {
					return err
				}
			}
			h, err := r.FindObject(args[0], want, true)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringVar(&typeName, "type", "", "peel the object to this type")
	return cmd
}
