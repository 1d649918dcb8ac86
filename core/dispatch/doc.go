// Package dispatch computes production plans in merit order.
//
// A MeritOrderDispatcher groups the requested powerplants by fuel class,
// then walks the classes in fixed priority (wind, gas, kerosine) assigning
// each unit the power still needed while respecting its pmin/pmax. The
// running total committed by one class is handed to the next one so later
// units only cover what is left. Costs are derived per unit from the fuel
// prices of the request.
//
// PlanManager wraps the dispatcher for the service: it assigns plan
// identifiers, persists plan logs, records metrics, publishes events and
// optionally sends the resulting setpoints to the units over MQTT.
package dispatch
