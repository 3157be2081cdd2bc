// Package model defines the core data types for PickUp.
//
// The model package contains the domain entities shared by every other
// layer: user identities, events, locations, and sport types. Types here
// mirror the remote document schema (the wire contract) but are plain Go
// values with no knowledge of the transport.
//
// # Wire Contract
//
// Two remote collections back these types:
//
//	users/{id}  -> {username, email, profileImageURL?}
//	events/{id} -> {title, description, sportType, location{...},
//	                date, maxParticipants, currentParticipants, creatorId}
//
// # Membership Derivation
//
// Whether a user is part of an event is always re-derived from
// ParticipantIDs. No cached "joined" booleans exist anywhere in the
// codebase; Event.HasParticipant is the single membership predicate.
//
// # Anomalies
//
// Remote documents can carry unknown or missing fields. Decoding
// substitutes defined defaults and records an Anomaly rather than
// failing; anomalies are telemetry, never user-facing errors.
package model
