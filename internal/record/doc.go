// Package record defines the structured records produced by classifying a
// free-form message: tasks, mood entries, habits, goals, health notes and
// workouts.
//
// A Record is a tagged union discriminated by Type. Habit records carry a
// Frequency and workout records carry a Duration; Normalize drops extras
// that do not belong to the variant.
package record
