// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

func (c *Converter) write(location string, data []byte) error {
	if location == Stdio {
		_, err := c.stdout.Write(data)
		return err
	}
	return writeFileAtomic(location, data, outputPerm)
}
