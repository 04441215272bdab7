package acmi

import "strings"

// Tag is one element of an object's Type property. Names outside the known
// set are kept as-is.
type Tag string

// Class
const (
	TagAir    Tag = "Air"
	TagGround Tag = "Ground"
	TagSea    Tag = "Sea"
	TagWeapon Tag = "Weapon"
	TagSensor Tag = "Sensor"
	TagNavaid Tag = "Navaid"
	TagMisc   Tag = "Misc"
	TagStatic Tag = "Static"
	TagHeavy  Tag = "Heavy"
	TagMedium Tag = "Medium"
	TagLight  Tag = "Light"
	TagMinor  Tag = "Minor"
)

// Basic types
const (
	TagFixedWing    Tag = "FixedWing"
	TagRotorcraft   Tag = "Rotorcraft"
	TagArmor        Tag = "Armor"
	TagAntiAircraft Tag = "AntiAircraft"
	TagVehicle      Tag = "Vehicle"
	TagWatercraft   Tag = "Watercraft"
	TagHuman        Tag = "Human"
	TagBiologic     Tag = "Biologic"
	TagMissile      Tag = "Missile"
	TagRocket       Tag = "Rocket"
	TagBomb         Tag = "Bomb"
	TagTorpedo      Tag = "Torpedo"
	TagProjectile   Tag = "Projectile"
	TagBeam         Tag = "Beam"
	TagDecoy        Tag = "Decoy"
	TagBuilding     Tag = "Building"
	TagBullseye     Tag = "Bullseye"
	TagWaypoint     Tag = "Waypoint"
)

// Specific types
const (
	TagTank            Tag = "Tank"
	TagWarship         Tag = "Warship"
	TagAircraftCarrier Tag = "AircraftCarrier"
	TagSubmarine       Tag = "Submarine"
	TagInfantry        Tag = "Infantry"
	TagParachutist     Tag = "Parachutist"
	TagShell           Tag = "Shell"
	TagBullet          Tag = "Bullet"
	TagFlare           Tag = "Flare"
	TagChaff           Tag = "Chaff"
	TagSmokeGrenade    Tag = "SmokeGrenade"
	TagAerodrome       Tag = "Aerodrome"
	TagContainer       Tag = "Container"
	TagShrapnel        Tag = "Shrapnel"
)

var knownTags = map[Tag]struct{}{}

func init() {
	for _, t := range []Tag{
		TagAir, TagGround, TagSea, TagWeapon, TagSensor, TagNavaid, TagMisc, TagStatic,
		TagHeavy, TagMedium, TagLight, TagMinor,
		TagFixedWing, TagRotorcraft, TagArmor, TagAntiAircraft, TagVehicle, TagWatercraft,
		TagHuman, TagBiologic, TagMissile, TagRocket, TagBomb, TagTorpedo, TagProjectile,
		TagBeam, TagDecoy, TagBuilding, TagBullseye, TagWaypoint,
		TagTank, TagWarship, TagAircraftCarrier, TagSubmarine, TagInfantry, TagParachutist,
		TagShell, TagBullet, TagFlare, TagChaff, TagSmokeGrenade, TagAerodrome, TagContainer,
		TagShrapnel,
	} {
		knownTags[t] = struct{}{}
	}
}

// Known reports whether t is part of the documented tag vocabulary.
func (t Tag) Known() bool {
	_, ok := knownTags[t]
	return ok
}

// parseTags splits a Type value on '+', dropping empty and repeated tags
// while keeping first-seen order.
func parseTags(value string) []Tag {
	var tags []Tag
	seen := make(map[Tag]struct{})
	for _, name := range strings.Split(value, "+") {
		t := Tag(name)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

func formatTags(tags []Tag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, "+")
}
