package cmd

const bannerText = `
 __        __                 _
 \ \      / /_ _  __ _  __ _| | ___
  \ \ /\ / / _` + "`" + ` |/ _` + "`" + ` |/ _` + "`" + ` | |/ _ \
   \ V  V / (_| | (_| | (_| | |  __/
    \_/\_/ \__,_|\__, |\__, |_|\___|
                 |___/ |___/

        Waggle Swarm Coordination
`

// Banner returns the CLI banner string.
func Banner() string {
	return bannerText
}
