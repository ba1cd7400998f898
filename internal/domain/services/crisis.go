package services

import "mindguard-lab/internal/domain/models"

// Crisis-resources text blocks, selected by risk tier. The marker substrings
// ("IMMEDIATE HELP AVAILABLE", "988", "Text HOME to 741741") are a stable
// contract: client UIs key crisis styling off them. Do not reword the markers.

const crisisResponseCritical = `🚨 **IMMEDIATE HELP AVAILABLE** 🚨

I'm very concerned about what you've shared. Your safety is the most important thing right now.

**IMMEDIATE CRISIS SUPPORT:**
• **Call 988** - National Suicide Prevention Lifeline (24/7)
• **Text HOME to 741741** - Crisis Text Line (24/7)
• **Call 911** - For immediate emergency assistance

**International Crisis Lines:**
• UK: 116 123 (Samaritans)
• Canada: 1-833-456-4566
• Australia: 13 11 14 (Lifeline)

**You are not alone.** These trained counselors are available right now to talk with you and help you through this difficult time.

If you're in immediate danger, please reach out to emergency services or go to your nearest hospital emergency room.

Would you like me to help you find local mental health resources or talk about what's making you feel this way?`

const crisisResponseHigh = `💙 **I'm Here to Listen** 💙

I hear that you're going through a really tough time right now. It takes courage to share what you're feeling.

**Support Resources Available:**
• **Call 988** - National Suicide Prevention Lifeline
• **Text HOME to 741741** - Crisis Text Line
• **Call 211** - Find local mental health resources

**Remember:**
• These feelings are temporary, even when they feel overwhelming
• Professional counselors are trained to help with exactly what you're experiencing
• Reaching out for help is a sign of strength, not weakness

**Immediate Coping Strategies:**
• Take slow, deep breaths
• Reach out to a trusted friend or family member
• Stay in a safe environment

I'm here to listen and support you. Would you like to talk about what's happening, or would you prefer information about local mental health services?`

const crisisResponseDefault = "I'm here to support you. If you're having thoughts of self-harm, please reach out to the National Suicide Prevention Lifeline at 988."

// CrisisResources returns the fixed support text for a risk tier
func CrisisResources(level models.RiskLevel) string {
	switch level {
	case models.RiskLevelCritical:
		return crisisResponseCritical
	case models.RiskLevelHigh:
		return crisisResponseHigh
	default:
		return crisisResponseDefault
	}
}
