// Package domain models a personal weather station's observations and the
// public products that accompany them.
//
// # Data Sources
//
// Current conditions come from the station itself, pushed or polled as a flat
// record of string fields using ecowitt names (tempf, humidity, windspeedmph,
// baromrelin, dailyrainin, winddir, uv, dateutc...). Values are imperial:
// °F, mph, inHg, inches. See [ParseReading].
//
// Daily and weekly history comes from the Weather Underground PWS API:
//
//	/v2/pws/observations/all/1day?units=e   → imperial observations for today
//	/v2/pws/history/all?date=YYYYMMDD&units=m → metric observations for a past day
//
// Forecasts and warnings come from Environment Canada Atom feeds. Each forecast
// entry carries a category term ("Weather Forecasts", "Current Conditions",
// "Warnings and Watches") and a title such as "Monday night: Cloudy. Low 5.".
// Warning feeds carry one entry per active alert whose summary contains
// "warning", "watch" or "statement".
//
// # Units
//
// Everything downstream of parsing is metric (°C, km/h, hPa, mm) and unrounded.
// Missing or malformed measurements are NaN and never move an extreme. Rounding
// happens once, in [NewDigest], where NaN renders as null.
//
// # Comfort
//
// Above 20°C the Canadian humidex applies; at or below 10°C with wind over
// 4.8 km/h the wind chill index applies; otherwise there is no comfort index.
// Dew point uses the Magnus approximation (b=243.04, a=17.625).
package domain
