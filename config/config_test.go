package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var yml = `
receiver: shed
measurement_update_limit: 5000
filter:
  mode: whitelist
  macs: ["aa:bb:cc:dd:ee:ff"]
tags:
  aabbccddeeff:
    name: Shed
`

func ExampleOpenRaw() {
	config, _ := OpenRaw([]byte(yml))
	fmt.Println(config.Receiver)
	fmt.Println(config.Measurement_Update_Limit)
	fmt.Println(config.TagName("AABBCCDDEEFF"))
	// Output:
	// shed
	// 5s
	// Shed
}

func ExampleNormalizeMAC() {
	mac, _ := NormalizeMAC("c9:b7:eb:45:c0:ef")
	fmt.Println(mac)
	// Output:
	// C9B7EB45C0EF
}

func TestDefaults(t *testing.T) {
	config, err := OpenRaw(nil)
	require.NoError(t, err)
	assert.Equal(t, 9900*time.Millisecond, config.Measurement_Update_Limit.Duration)
	assert.Equal(t, "hcidump --raw", config.Command.Dump)
	assert.Equal(t, "hcitool lescan --duplicates --passive", config.Command.Scan)
	assert.Equal(t, InputHcidump, config.Input.Source)
	assert.Equal(t, 9155, config.Prometheus.Port)
	assert.Equal(t, 0.05, config.Motion_Sensitivity.Threshold)
	assert.Equal(t, 3, config.Motion_Sensitivity.History)
	assert.Equal(t, []string{"dummy"}, config.StorageMethods())
	assert.True(t, config.IsAllowedMAC("AABBCCDDEEFF"))
	assert.False(t, config.IsAllowedMAC(""))
	assert.True(t, config.FieldFilter("AABBCCDDEEFF")("dewPoint"))
}

func TestDurationString(t *testing.T) {
	config, err := OpenRaw([]byte("measurement_update_limit: 1m30s"))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, config.Measurement_Update_Limit.Duration)

	_, err = OpenRaw([]byte("measurement_update_limit: soon"))
	assert.Error(t, err)
}

func TestFilterModes(t *testing.T) {
	config, err := OpenRaw([]byte(`
filter:
  mode: blacklist
  macs: ["AA-BB-CC-DD-EE-FF"]
`))
	require.NoError(t, err)
	assert.False(t, config.IsAllowedMAC("AABBCCDDEEFF"))
	assert.True(t, config.IsAllowedMAC("112233445566"))

	config, err = OpenRaw([]byte(yml))
	require.NoError(t, err)
	assert.True(t, config.IsAllowedMAC("AABBCCDDEEFF"))
	assert.False(t, config.IsAllowedMAC("112233445566"))

	config, err = OpenRaw([]byte(`
filter:
  mode: named
tags:
  "11:22:33:44:55:66":
    name: Fridge
`))
	require.NoError(t, err)
	assert.True(t, config.IsAllowedMAC("112233445566"))
	assert.False(t, config.IsAllowedMAC("AABBCCDDEEFF"))
}

func TestInvalidConfigs(t *testing.T) {
	for _, data := range []string{
		"filter:\n  mode: named\n",
		"filter:\n  mode: sometimes\n",
		"filter:\n  macs: [nope]\n",
		"tags:\n  nope:\n    name: x\n",
		"storage:\n  values: whitelist\n",
		"storage:\n  values: everything\n",
		"tags:\n  AABBCCDDEEFF:\n    storage:\n      values: whitelist\n",
		"receiver: [",
		"measurement_update_limit: 0",
		"motion_sensitivity:\n  threshold: 0\n",
		"motion_sensitivity:\n  threshold: -0.1\n",
		"motion_sensitivity:\n  history: 1\n",
	} {
		_, err := OpenRaw([]byte(data))
		assert.Error(t, err, data)
	}
}

func TestFieldFilters(t *testing.T) {
	config := ExampleConfig
	global := config.FieldFilter("AABBCCDDEEFF")
	assert.True(t, global("dewPoint"))
	assert.True(t, global("temperature"))

	door := config.FieldFilter("C9B7EB45C0EF")
	assert.True(t, door("temperature"))
	assert.False(t, door("humidity"))

	raw, err := OpenRaw([]byte("storage:\n  values: raw\n"))
	require.NoError(t, err)
	assert.True(t, raw.FieldFilter("AABBCCDDEEFF")("rssi"))
	assert.False(t, raw.FieldFilter("AABBCCDDEEFF")("dewPoint"))

	black, err := OpenRaw([]byte("storage:\n  values: blacklist\n  list: [rssi]\n"))
	require.NoError(t, err)
	assert.False(t, black.FieldFilter("AABBCCDDEEFF")("rssi"))
	assert.True(t, black.FieldFilter("AABBCCDDEEFF")("dewPoint"))
}

func TestExampleConfig(t *testing.T) {
	config := ExampleConfig
	assert.Equal(t, "livingroom-pi", config.Receiver)
	assert.Equal(t, []string{"logger", "prometheus"}, config.StorageMethods())
	assert.Equal(t, "Front door", config.TagName("C9B7EB45C0EF"))
	assert.Equal(t, "onMovement", config.StrategyName("C9B7EB45C0EF"))
	assert.Equal(t, "default", config.StrategyName("AABBCCDDEEFF"))
	assert.False(t, config.IsAllowedMAC("AB12CD34EF56"))
	assert.Equal(t, "tcp://localhost:1883", config.Mqtt.Broker)
	assert.Equal(t, "ruuvi-collector", config.Mqtt.Client_Id)
}

func TestOpenPath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "ruuvi-collector.yml")
	require.NoError(t, os.WriteFile(p, []byte(yml), 0600))

	config, err := OpenPath(p)
	require.NoError(t, err)
	assert.Equal(t, "shed", config.Receiver)

	config, err = OpenPath(filepath.Join(dir, "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "", config.Receiver)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/etc/xdg")
	assert.Equal(t, "/etc/xdg/ruuvi-collector/ruuvi-collector.yml", ConfigPath("ruuvi-collector.yml"))

	t.Setenv("XDG_CONFIG_HOME", "")
	assert.True(t, strings.HasSuffix(ConfigPath("x.yml"), ".config/ruuvi-collector/x.yml"))
}
