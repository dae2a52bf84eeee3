// internal/registry/catalog.go
package registry

// Built-in catalog for Huawei SUN2000-class inverters. Addresses, lengths,
// gains and units follow the vendor's Modbus interface definition.

var state1Flags = map[uint64]string{
	0x0001: "standby",
	0x0002: "grid_connected",
	0x0004: "grid_connected_normally",
	0x0008: "grid_connection_derated_power_rationing",
	0x0010: "grid_connection_derated_internal_cause",
	0x0020: "normal_stop",
	0x0040: "stop_due_to_faults",
	0x0080: "stop_due_to_power_rationing",
	0x0100: "shutdown",
	0x0200: "spot_check",
}

var state2Flags = map[uint64]string{
	0x0001: "unlocked",
	0x0002: "pv_connected",
	0x0004: "dsp_data_collection",
}

var state3Flags = map[uint64]string{
	0x00000001: "off_grid",
	0x00000002: "off_grid_switch_enabled",
}

var alarm1Flags = map[uint64]string{
	0x0001: "high_string_input_voltage",
	0x0002: "dc_arc_fault",
	0x0004: "string_reverse_connection",
	0x0008: "string_current_backfeed",
	0x0010: "abnormal_string_power",
	0x0020: "afci_self_check_fail",
	0x0040: "phase_wire_short_circuit_to_pe",
	0x0080: "grid_phase_failure",
	0x0100: "pv_string_loss",
	0x0200: "grid_undervoltage",
	0x0400: "grid_overvoltage",
	0x0800: "grid_volt_imbalance",
	0x1000: "grid_overfrequency",
	0x2000: "grid_underfrequency",
	0x4000: "unstable_grid_frequency",
	0x8000: "output_overcurrent",
}

var alarm2Flags = map[uint64]string{
	0x0001: "output_dc_component_overhigh",
	0x0002: "abnormal_residual_current",
	0x0004: "abnormal_grounding",
	0x0008: "low_insulation_resistance",
	0x0010: "overtemperature",
	0x0020: "device_fault",
	0x0040: "upgrade_failed",
	0x0080: "license_expired",
	0x0100: "faulty_monitoring_unit",
	0x0200: "faulty_power_collector",
	0x0400: "battery_abnormal",
	0x0800: "active_islanding",
	0x1000: "passive_islanding",
	0x2000: "transient_ac_overvoltage",
	0x4000: "peripheral_port_short_circuit",
	0x8000: "churn_output_overload",
}

var alarm3Flags = map[uint64]string{
	0x0001: "abnormal_pv_module_configuration",
	0x0002: "optimizer_fault",
	0x0004: "built_in_pid_operation_abnormal",
	0x0008: "high_input_string_voltage_to_ground",
	0x0010: "external_fan_abnormal",
	0x0020: "battery_reverse_connection",
	0x0040: "on_grid_off_grid_controller_abnormal",
	0x0080: "pv_string_loss",
	0x0100: "internal_fan_abnormal",
	0x0200: "dc_protection_unit_abnormal",
}

var deviceStatusCodes = map[uint16]string{
	0x0000: "standby_initializing",
	0x0001: "standby_detecting_insulation_resistance",
	0x0002: "standby_detecting_irradiation",
	0x0003: "standby_grid_detecting",
	0x0100: "starting",
	0x0200: "on_grid",
	0x0201: "grid_connection_power_limited",
	0x0202: "grid_connection_self_derating",
	0x0203: "off_grid_running",
	0x0300: "shutdown_fault",
	0x0301: "shutdown_command",
	0x0302: "shutdown_ovgr",
	0x0303: "shutdown_communication_disconnected",
	0x0304: "shutdown_power_limited",
	0x0305: "shutdown_manual_startup_required",
	0x0306: "shutdown_dc_switches_disconnected",
	0x0307: "shutdown_rapid_cutoff",
	0x0308: "shutdown_input_underpower",
	0x0401: "grid_scheduling_cos_phi_p_curve",
	0x0402: "grid_scheduling_qu_curve",
	0x0403: "grid_scheduling_pf_u_curve",
	0x0404: "grid_scheduling_dry_contact",
	0x0405: "grid_scheduling_qp_curve",
	0x0500: "spot_check_ready",
	0x0501: "spot_checking",
	0x0600: "inspecting",
	0x0700: "afci_self_check",
	0x0800: "io_power_detection",
	0x0900: "disconnected",
	0x0A00: "standby_no_irradiation",
}

var storageStatusCodes = map[uint16]string{
	0: "offline",
	1: "standby",
	2: "running",
	3: "fault",
	4: "sleep_mode",
}

var storageWorkingModeCodes = map[uint16]string{
	0: "adaptive",
	1: "fixed_charge_discharge",
	2: "maximise_self_consumption",
	3: "time_of_use",
	4: "fully_fed_to_grid",
	5: "param_config_backup",
}

var meterStatusCodes = map[uint16]string{
	0: "offline",
	1: "normal",
}

var meterTypeCodes = map[uint16]string{
	0: "single_phase",
	1: "three_phase",
}

// Catalog returns the built-in descriptor set. Callers extend or replace it
// by constructing their own Table.
func Catalog() []Descriptor {
	return []Descriptor{
		// ---- identification ----
		{Name: "model_name", Address: 30000, Length: 15, Kind: String},
		{Name: "serial_number", Address: 30015, Length: 10, Kind: String},
		{Name: "model_id", Address: 30070, Length: 1, Kind: Unsigned},
		{Name: "nb_pv_strings", Address: 30071, Length: 1, Kind: Unsigned},
		{Name: "nb_mppt_tracks", Address: 30072, Length: 1, Kind: Unsigned},
		{Name: "rated_power", Address: 30073, Length: 2, Kind: Unsigned, Unit: "W"},
		{Name: "maximum_active_power", Address: 30075, Length: 2, Kind: Unsigned, Unit: "W"},
		{Name: "maximum_apparent_power", Address: 30077, Length: 2, Kind: Unsigned, Unit: "VA"},
		{Name: "maximum_reactive_power_out", Address: 30079, Length: 2, Kind: Signed, Unit: "var"},
		{Name: "maximum_reactive_power_in", Address: 30081, Length: 2, Kind: Signed, Unit: "var"},

		// ---- state and alarms ----
		{Name: "state_1", Address: 32000, Length: 1, Kind: Bitfield, Flags: state1Flags},
		{Name: "state_2", Address: 32002, Length: 1, Kind: Bitfield, Flags: state2Flags},
		{Name: "state_3", Address: 32003, Length: 2, Kind: Bitfield, Flags: state3Flags},
		{Name: "alarm_1", Address: 32008, Length: 1, Kind: Bitfield, Flags: alarm1Flags},
		{Name: "alarm_2", Address: 32009, Length: 1, Kind: Bitfield, Flags: alarm2Flags},
		{Name: "alarm_3", Address: 32010, Length: 1, Kind: Bitfield, Flags: alarm3Flags},

		// ---- pv string telemetry ----
		{Name: "pv_01_voltage", Address: 32016, Length: 1, Kind: Signed, Scale: Gain(10), Unit: "V"},
		{Name: "pv_01_current", Address: 32017, Length: 1, Kind: Signed, Scale: Gain(100), Unit: "A"},
		{Name: "pv_02_voltage", Address: 32018, Length: 1, Kind: Signed, Scale: Gain(10), Unit: "V"},
		{Name: "pv_02_current", Address: 32019, Length: 1, Kind: Signed, Scale: Gain(100), Unit: "A"},
		{Name: "pv_03_voltage", Address: 32020, Length: 1, Kind: Signed, Scale: Gain(10), Unit: "V"},
		{Name: "pv_03_current", Address: 32021, Length: 1, Kind: Signed, Scale: Gain(100), Unit: "A"},
		{Name: "pv_04_voltage", Address: 32022, Length: 1, Kind: Signed, Scale: Gain(10), Unit: "V"},
		{Name: "pv_04_current", Address: 32023, Length: 1, Kind: Signed, Scale: Gain(100), Unit: "A"},

		// ---- grid electrical telemetry ----
		{Name: "input_power", Address: 32064, Length: 2, Kind: Signed, Unit: "W"},
		{Name: "grid_voltage", Address: 32066, Length: 1, Kind: Unsigned, Scale: Gain(10), Unit: "V", Alias: true},
		{Name: "line_voltage_a_b", Address: 32066, Length: 1, Kind: Unsigned, Scale: Gain(10), Unit: "V"},
		{Name: "line_voltage_b_c", Address: 32067, Length: 1, Kind: Unsigned, Scale: Gain(10), Unit: "V"},
		{Name: "line_voltage_c_a", Address: 32068, Length: 1, Kind: Unsigned, Scale: Gain(10), Unit: "V"},
		{Name: "phase_a_voltage", Address: 32069, Length: 1, Kind: Unsigned, Scale: Gain(10), Unit: "V"},
		{Name: "phase_b_voltage", Address: 32070, Length: 1, Kind: Unsigned, Scale: Gain(10), Unit: "V"},
		{Name: "phase_c_voltage", Address: 32071, Length: 1, Kind: Unsigned, Scale: Gain(10), Unit: "V"},
		{Name: "grid_current", Address: 32072, Length: 2, Kind: Signed, Scale: Gain(1000), Unit: "A", Alias: true},
		{Name: "phase_a_current", Address: 32072, Length: 2, Kind: Signed, Scale: Gain(1000), Unit: "A"},
		{Name: "phase_b_current", Address: 32074, Length: 2, Kind: Signed, Scale: Gain(1000), Unit: "A"},
		{Name: "phase_c_current", Address: 32076, Length: 2, Kind: Signed, Scale: Gain(1000), Unit: "A"},
		{Name: "day_active_power_peak", Address: 32078, Length: 2, Kind: Signed, Unit: "W"},
		{Name: "active_power", Address: 32080, Length: 2, Kind: Signed, Unit: "W"},
		{Name: "reactive_power", Address: 32082, Length: 2, Kind: Signed, Unit: "var"},
		{Name: "power_factor", Address: 32084, Length: 1, Kind: Signed, Scale: Gain(1000)},
		{Name: "grid_frequency", Address: 32085, Length: 1, Kind: Unsigned, Scale: Gain(100), Unit: "Hz"},
		{Name: "efficiency", Address: 32086, Length: 1, Kind: Unsigned, Scale: Gain(100), Unit: "%"},
		{Name: "internal_temperature", Address: 32087, Length: 1, Kind: Signed, Scale: Gain(10), Unit: "°C"},
		{Name: "insulation_resistance", Address: 32088, Length: 1, Kind: Unsigned, Scale: Gain(100), Unit: "MΩ"},
		{Name: "device_status", Address: 32089, Length: 1, Kind: Enum, Enum: deviceStatusCodes},
		{Name: "fault_code", Address: 32090, Length: 1, Kind: Unsigned},
		{Name: "startup_time", Address: 32091, Length: 2, Kind: Timestamp},
		{Name: "shutdown_time", Address: 32093, Length: 2, Kind: Timestamp},

		// ---- energy counters ----
		{Name: "accumulated_yield_energy", Address: 32106, Length: 2, Kind: Unsigned, Scale: Gain(100), Unit: "kWh"},
		{Name: "daily_yield_energy", Address: 32114, Length: 2, Kind: Unsigned, Scale: Gain(100), Unit: "kWh"},

		// ---- optimizers ----
		{Name: "nb_optimizers", Address: 37200, Length: 1, Kind: Unsigned},
		{Name: "nb_online_optimizers", Address: 37201, Length: 1, Kind: Unsigned},

		// ---- power meter ----
		{Name: "meter_status", Address: 37100, Length: 1, Kind: Enum, Enum: meterStatusCodes},
		{Name: "grid_a_voltage", Address: 37101, Length: 2, Kind: Signed, Scale: Gain(10), Unit: "V"},
		{Name: "grid_b_voltage", Address: 37103, Length: 2, Kind: Signed, Scale: Gain(10), Unit: "V"},
		{Name: "grid_c_voltage", Address: 37105, Length: 2, Kind: Signed, Scale: Gain(10), Unit: "V"},
		{Name: "active_grid_a_current", Address: 37107, Length: 2, Kind: Signed, Scale: Gain(100), Unit: "A"},
		{Name: "active_grid_b_current", Address: 37109, Length: 2, Kind: Signed, Scale: Gain(100), Unit: "A"},
		{Name: "active_grid_c_current", Address: 37111, Length: 2, Kind: Signed, Scale: Gain(100), Unit: "A"},
		{Name: "power_meter_active_power", Address: 37113, Length: 2, Kind: Signed, Unit: "W"},
		{Name: "power_meter_reactive_power", Address: 37115, Length: 2, Kind: Signed, Unit: "var"},
		{Name: "active_grid_power_factor", Address: 37117, Length: 1, Kind: Signed, Scale: Gain(1000)},
		{Name: "active_grid_frequency", Address: 37118, Length: 1, Kind: Signed, Scale: Gain(100), Unit: "Hz"},
		{Name: "grid_exported_energy", Address: 37119, Length: 2, Kind: Signed, Scale: Gain(100), Unit: "kWh"},
		{Name: "grid_accumulated_energy", Address: 37121, Length: 2, Kind: Unsigned, Scale: Gain(100), Unit: "kWh"},
		{Name: "meter_type", Address: 37125, Length: 1, Kind: Enum, Enum: meterTypeCodes},

		// ---- storage telemetry ----
		{Name: "storage_running_status", Address: 37762, Length: 1, Kind: Enum, Enum: storageStatusCodes},
		{Name: "storage_bus_voltage", Address: 37763, Length: 1, Kind: Unsigned, Scale: Gain(10), Unit: "V"},
		{Name: "storage_bus_current", Address: 37764, Length: 1, Kind: Signed, Scale: Gain(10), Unit: "A"},
		{Name: "storage_charge_discharge_power", Address: 37765, Length: 2, Kind: Signed, Unit: "W"},
		{Name: "storage_state_of_capacity", Address: 37760, Length: 1, Kind: Unsigned, Scale: Gain(10), Unit: "%"},
		{Name: "storage_rated_capacity", Address: 37758, Length: 2, Kind: Unsigned, Unit: "Wh"},
		{Name: "storage_total_charge", Address: 37780, Length: 2, Kind: Unsigned, Scale: Gain(100), Unit: "kWh"},
		{Name: "storage_total_discharge", Address: 37782, Length: 2, Kind: Unsigned, Scale: Gain(100), Unit: "kWh"},
		{Name: "storage_current_day_charge_capacity", Address: 37784, Length: 2, Kind: Unsigned, Scale: Gain(100), Unit: "kWh"},
		{Name: "storage_current_day_discharge_capacity", Address: 37786, Length: 2, Kind: Unsigned, Scale: Gain(100), Unit: "kWh"},

		// ---- storage control (writable) ----
		{Name: "storage_working_mode", Address: 47086, Length: 1, Kind: Enum, Enum: storageWorkingModeCodes, Writable: true},
		{Name: "storage_maximum_charging_power", Address: 47075, Length: 2, Kind: Unsigned, Unit: "W", Writable: true},
		{Name: "storage_maximum_discharging_power", Address: 47077, Length: 2, Kind: Unsigned, Unit: "W", Writable: true},
		{Name: "storage_power_limit_grid_tied_point", Address: 47079, Length: 2, Kind: Signed, Unit: "W", Writable: true},
		{Name: "storage_charging_cutoff_capacity", Address: 47081, Length: 1, Kind: Unsigned, Scale: Gain(10), Unit: "%", Writable: true},
		{Name: "storage_discharging_cutoff_capacity", Address: 47082, Length: 1, Kind: Unsigned, Scale: Gain(10), Unit: "%", Writable: true},
		{Name: "storage_forced_charge_discharge_period", Address: 47083, Length: 1, Kind: Unsigned, Unit: "min", Writable: true},
		{Name: "storage_forcible_charge_power", Address: 47247, Length: 2, Kind: Unsigned, Unit: "W", Writable: true},
		{Name: "storage_forcible_discharge_power", Address: 47249, Length: 2, Kind: Unsigned, Unit: "W", Writable: true},

		// ---- system ----
		{Name: "system_time", Address: 40000, Length: 2, Kind: Timestamp, Writable: true},
		{Name: "grid_code", Address: 42000, Length: 1, Kind: Unsigned, Writable: true},
		{Name: "time_zone", Address: 43006, Length: 1, Kind: Signed, Unit: "min", Writable: true},
	}
}

// DefaultTable builds a Table from the built-in catalog.
// The catalog is static, so construction cannot fail.
func DefaultTable() *Table {
	t, err := NewTable(Catalog())
	if err != nil {
		panic("registry: built-in catalog invalid: " + err.Error())
	}
	return t
}
