package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/meshsig/frost/curve"
	"github.com/meshsig/frost/dkg"
)

func keygenCmd(c *cli.Context) error {
	key, err := dkg.GenerateLongTermKey()
	if err != nil {
		return fmt.Errorf("generating identity: %w", err)
	}
	id := key.NodeID()

	out := fmt.Sprintf(
		"# node_id = %s\nprivate_key = %q\n\n[[peers]]\nnode_id = %q\naddress = \"\"\npublic_key = %q\n",
		id.String(),
		fmt.Sprintf("%x", key.Private.Bytes()),
		id.String(),
		fmt.Sprintf("%x", curve.SerializePoint(key.Public)),
	)

	if path := c.String("out"); path != "" {
		return os.WriteFile(path, []byte(out), 0o600)
	}
	_, err = fmt.Print(out)
	return err
}
